// Package main serves the composer HTTP API from Lambda behind API Gateway
// (HTTP API, payload v2):
//
//	GET  /api/health
//	GET  /api/templates
//	POST /api/compose
package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/api"
	"github.com/fpang/kidvid-composer/internal/lambdaboot"
	"github.com/fpang/kidvid-composer/internal/logging"
	"github.com/fpang/kidvid-composer/internal/metrics"
)

func newService() *api.Service {
	initStart := time.Now()

	aws := lambdaboot.InitAWS()
	engine := lambdaboot.LoadEngineConfig(aws.SSM)

	s3s := lambdaboot.InitS3(aws.Config, lambdaboot.EnvAssetBucket)
	reader, source := lambdaboot.InitCatalogReader(aws.Config, s3s)

	svc := &api.Service{
		Resolver:    engine.Resolver(),
		Catalog:     reader,
		NewRecorder: func() *metrics.Recorder { return metrics.New(metrics.Namespace) },
	}
	if sfn := lambdaboot.InitRenderHandoff(aws.Config, lambdaboot.EnvRenderStateMachine); sfn != nil {
		svc.Submitter = sfn
	}

	startup := lambdaboot.StartupLog("compose-api-lambda", initStart).
		CommitHash(commitHash).
		Config("catalog", source).
		StateMachine("render", os.Getenv(lambdaboot.EnvRenderStateMachine)).
		Config("templates", strings.Join(engine.Registry.IDs(), ","))
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
	return svc
}

// withRequestLog logs each request at debug level.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	})
}

func main() {
	logging.InitJSON()
	handler := withRequestLog(api.NewHandler(newService()))

	adapter := httpadapter.NewV2(handler)
	lambda.Start(adapter.ProxyWithContext)
}
