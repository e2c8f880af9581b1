package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fpang/kidvid-composer/internal/cli"
	"github.com/fpang/kidvid-composer/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the registered templates and their slots",
	Long: `Templates prints every template in the engine config. Per-letter slots are
marked with [] and optional slots with ?.`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := loadEngine(configFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load engine")
		}
		cli.WriteTemplates(os.Stdout, engine.Registry)
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the safe-zone rules",
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := loadEngine(configFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load engine")
		}
		cli.WriteRules(os.Stdout, engine.Rules)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the engine config for errors and vocabulary gaps",
	Run: func(cmd *cobra.Command, args []string) {
		ok, err := runValidate(os.Stdout, configFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Validation failed")
		}
		if !ok {
			os.Exit(1)
		}
	},
}

var dumpConfigCmd = &cobra.Command{
	Use:   "dump-config",
	Short: "Print the effective engine config as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
		out, err := cfg.Marshal()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to marshal config")
		}
		os.Stdout.Write(out)
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd, rulesCmd, validateCmd, dumpConfigCmd)
}

// runValidate prints one line per finding and reports whether the config
// is free of errors.
func runValidate(w io.Writer, path string) (bool, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return false, err
	}
	results := cfg.Validate()
	for _, r := range results {
		fmt.Fprintf(w, "%-7s %s\n", r.Level, r.Message)
	}
	if config.HasErrors(results) {
		return false, nil
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "ok")
	}
	return true, nil
}
