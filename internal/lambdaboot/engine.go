package lambdaboot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/config"
)

// SSMGetAPI is the subset of the SSM client used to load the engine config.
type SSMGetAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// FetchEngineConfig reads the YAML engine config stored in the named SSM
// parameter.
func FetchEngineConfig(ctx context.Context, client SSMGetAPI, paramName string) (config.Config, error) {
	start := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(false),
	})
	if err != nil {
		return config.Config{}, fmt.Errorf("GetParameter %s: %w", paramName, err)
	}
	cfg, err := config.Parse([]byte(aws.ToString(result.Parameter.Value)))
	if err != nil {
		return config.Config{}, fmt.Errorf("parse %s: %w", paramName, err)
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(start)).Msg("Engine config loaded from SSM")
	return cfg, nil
}

// LoadEngineConfig builds the engine from the SSM parameter named by
// SSM_ENGINE_CONFIG_PARAM, or from the built-in defaults when it is unset.
// Fatals on any error: a Lambda with a broken engine config must not serve.
func LoadEngineConfig(client SSMGetAPI) *config.Engine {
	cfg := config.Default()
	if param := os.Getenv(EnvEngineConfigParam); param != "" {
		var err error
		cfg, err = FetchEngineConfig(context.Background(), client, param)
		if err != nil {
			log.Fatal().Err(err).Str("param", param).Msg("Failed to load engine config")
		}
	} else {
		log.Info().Msg("No engine config parameter set, using built-in defaults")
	}

	engine, err := cfg.Engine()
	if err != nil {
		log.Fatal().Err(err).Msg("Engine config is invalid")
	}
	return engine
}
