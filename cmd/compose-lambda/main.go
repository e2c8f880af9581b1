// Package main provides the Lambda entry point that resolves one
// composition per invocation.
//
// Invoked directly (lambda:Invoke) or as a Step Functions task with a
// ComposeEvent. The result carries the composition and, when requested and
// complete, the ARN of the render execution it was handed to.
package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/api"
	"github.com/fpang/kidvid-composer/internal/lambdaboot"
	"github.com/fpang/kidvid-composer/internal/logging"
	"github.com/fpang/kidvid-composer/internal/metrics"
)

var coldStart = true

var svc *api.Service

// bootstrap runs the cold-start wiring. Tests never call it.
func bootstrap() {
	initStart := time.Now()
	logging.InitJSON()

	aws := lambdaboot.InitAWS()
	engine := lambdaboot.LoadEngineConfig(aws.SSM)

	s3s := lambdaboot.InitS3(aws.Config, lambdaboot.EnvAssetBucket)
	reader, source := lambdaboot.InitCatalogReader(aws.Config, s3s)

	svc = &api.Service{
		Resolver:    engine.Resolver(),
		Catalog:     reader,
		NewRecorder: func() *metrics.Recorder { return metrics.New(metrics.Namespace) },
	}
	if sfn := lambdaboot.InitRenderHandoff(aws.Config, lambdaboot.EnvRenderStateMachine); sfn != nil {
		svc.Submitter = sfn
	}

	startup := lambdaboot.StartupLog("compose-lambda", initStart).
		CommitHash(commitHash).
		Config("catalog", source).
		StateMachine("render", os.Getenv(lambdaboot.EnvRenderStateMachine)).
		Config("templates", joinIDs(engine.Registry.IDs()))
	if s3s != nil {
		startup.S3Bucket("assets", s3s.Bucket)
	}
	if t := os.Getenv(lambdaboot.EnvCatalogTable); t != "" {
		startup.DynamoTable("catalog", t)
	}
	if p := os.Getenv(lambdaboot.EnvEngineConfigParam); p != "" {
		startup.SSMParam("engineConfig", p)
	}
	startup.Log()
}

func main() {
	bootstrap()
	lambda.Start(handler)
}

func handler(ctx context.Context, event ComposeEvent) (*api.ComposeResult, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "compose-lambda").Msg("Cold start, first invocation")
	}
	return handle(ctx, svc, event)
}
