// Package lambdaboot provides shared Lambda cold-start bootstrap logic.
//
// Every composer Lambda needs some subset of: AWS config, the DynamoDB
// catalog, S3 presigning, the engine config from SSM, the render state
// machine, and startup logging. Each Lambda's cold-start wiring is a short composition
// of these helpers.
package lambdaboot

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/logging"
	"github.com/fpang/kidvid-composer/internal/renderhandoff"
	"github.com/fpang/kidvid-composer/internal/s3util"
	"github.com/fpang/kidvid-composer/internal/store"
)

// Environment variables read at cold start.
const (
	EnvCatalogTable       = "CATALOG_TABLE_NAME"
	EnvAssetBucket        = "ASSET_BUCKET_NAME"
	EnvEngineConfigParam  = "SSM_ENGINE_CONFIG_PARAM"
	EnvRenderStateMachine = "RENDER_STATE_MACHINE_ARN"
	EnvAssetURLTTL        = "ASSET_URL_TTL"
	EnvCatalogSnapshotKey = "CATALOG_SNAPSHOT_KEY"
)

// AWSClients holds the core AWS SDK clients used across Lambdas.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds the S3 client, presigner and bucket name.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// InitS3 creates an S3 client and presigner for the bucket named by
// bucketEnvVar. Returns nil (with a warning) if the variable is unset, in
// which case assets must carry absolute URLs.
func InitS3(cfg aws.Config, bucketEnvVar string) *S3Clients {
	bucket := os.Getenv(bucketEnvVar)
	if bucket == "" {
		log.Warn().Str("envVar", bucketEnvVar).Msg("Asset bucket not set, URL presigning disabled")
		return nil
	}
	client := s3.NewFromConfig(cfg)
	return &S3Clients{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
	}
}

// URLSigner builds a presigner from ASSET_URL_TTL, falling back to the
// default TTL when the value is unset or invalid.
func (c *S3Clients) URLSigner() *s3util.URLSigner {
	ttl := s3util.DefaultURLTTL
	if raw := os.Getenv(EnvAssetURLTTL); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			log.Warn().Str("value", raw).Msg("Invalid ASSET_URL_TTL, using default")
		} else {
			ttl = parsed
		}
	}
	return s3util.NewURLSigner(c.Presigner, c.Bucket, ttl)
}

// InitCatalog creates the DynamoDB catalog reader for the table named by
// tableEnvVar. Fatals if the variable is empty.
func InitCatalog(cfg aws.Config, tableEnvVar string) *store.DynamoCatalog {
	tableName := os.Getenv(tableEnvVar)
	if tableName == "" {
		log.Fatal().Str("envVar", tableEnvVar).Msg("DynamoDB table environment variable is required")
	}
	return store.NewDynamoCatalog(dynamodb.NewFromConfig(cfg), tableName)
}

// InitCatalogReader picks the catalog source. With CATALOG_SNAPSHOT_KEY set
// and an asset bucket configured, the approved catalog is read from that S3
// snapshot object; otherwise from the DynamoDB table. Asset URLs are
// presigned whenever a bucket is configured. The returned string names the
// source for startup logging.
func InitCatalogReader(cfg aws.Config, s3s *S3Clients) (catalog.Reader, string) {
	var reader catalog.Reader
	var source string
	if key := os.Getenv(EnvCatalogSnapshotKey); key != "" && s3s != nil {
		reader = &s3util.SnapshotReader{Client: s3s.Client, Bucket: s3s.Bucket, Key: key}
		source = "s3://" + s3s.Bucket + "/" + key
	} else {
		dc := InitCatalog(cfg, EnvCatalogTable)
		reader = dc
		source = "dynamodb:" + dc.TableName()
	}
	if s3s != nil {
		reader = s3s.URLSigner().Wrap(reader)
	}
	return reader, source
}

// InitRenderHandoff creates the render submitter if arnEnvVar is set.
// Returns nil (with a warning) otherwise.
func InitRenderHandoff(cfg aws.Config, arnEnvVar string) *renderhandoff.StepFunctions {
	arn := os.Getenv(arnEnvVar)
	if arn == "" {
		log.Warn().Str("envVar", arnEnvVar).Msg("Render state machine not set, render submission disabled")
		return nil
	}
	return renderhandoff.NewStepFunctions(sfn.NewFromConfig(cfg), arn)
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
