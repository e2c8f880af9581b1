package main

import (
	"fmt"
	"os"

	"github.com/fpang/kidvid-composer/internal/config"
	"github.com/fpang/kidvid-composer/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// configEnvVar supplies the default for --config.
const configEnvVar = "COMPOSER_CONFIG"

// Global flags
var (
	configFlag  string
	verboseFlag bool
)

// rootCmd is the main Cobra command for the composer CLI.
var rootCmd = &cobra.Command{
	Use:   "composer",
	Short: "Resolve template slots to catalog assets for personalized videos",
	Long: `Composer resolves a video template against a snapshot of the approved asset
catalog and prints the resulting composition: one asset per slot, one asset
per letter of the child's name for spelling segments, and the list of required
slots that could not be filled.

The engine tables (safe zones, keyword vocabulary and templates) come from the
YAML file given with --config. Without one, the built-in tables are used.

Examples:
  composer templates
  composer resolve -t lullaby-classic -c catalog.json --theme "sleepy moon"
  composer resolve -t name-spelling -c catalog.json.zst --name Bo --seed 7
  composer validate --config engine.yaml
  composer catalog push -c catalog.json --table kidvid-catalog`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
		if verboseFlag {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", logging.EnvOrDefault(configEnvVar, ""), "Engine config YAML (default: $COMPOSER_CONFIG, else built-in tables)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads path, or returns the built-in defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func loadEngine(path string) (*config.Engine, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	engine, err := cfg.Engine()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	log.Debug().Str("config", path).Strs("templates", engine.Registry.IDs()).Msg("Engine ready")
	return engine, nil
}
