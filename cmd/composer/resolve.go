package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/cli"
	"github.com/fpang/kidvid-composer/internal/compose"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// resolveOptions carries the resolve command's flags.
type resolveOptions struct {
	ConfigPath    string
	TemplateID    string
	CatalogPath   string
	Name          string
	Age           int
	Theme         string
	Seed          int64
	HasAge        bool
	HasSeed       bool
	PreferHighest bool
	Overrides     []string
	Zones         []string
	Format        string
}

var resolveFlags resolveOptions

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a template against a catalog snapshot",
	Long: `Resolve matches every slot of the template to candidate assets, ranks them
against the theme, and prints the composition. Spelling templates get one
asset per letter of --name, alternating left and right safe zones.

The catalog is a JSON array of approved assets; files ending in .zst are
zstd-compressed. Missing required slots are reported, not treated as errors.`,
	Run: func(cmd *cobra.Command, args []string) {
		resolveFlags.ConfigPath = configFlag
		resolveFlags.HasAge = cmd.Flags().Changed("age")
		resolveFlags.HasSeed = cmd.Flags().Changed("seed")
		if err := runResolve(cmd.Context(), os.Stdout, resolveFlags); err != nil {
			log.Fatal().Err(err).Msg("Resolve failed")
		}
	},
}

func init() {
	f := resolveCmd.Flags()
	f.StringVarP(&resolveFlags.TemplateID, "template", "t", "", "Template ID to resolve (required)")
	f.StringVarP(&resolveFlags.CatalogPath, "catalog", "c", "", "Catalog snapshot file, .json or .json.zst (required)")
	f.StringVarP(&resolveFlags.Name, "name", "n", "", "Child's name")
	f.IntVar(&resolveFlags.Age, "age", 0, "Child's age in years")
	f.StringVar(&resolveFlags.Theme, "theme", "", "Theme text, e.g. \"sleepy moon\"")
	f.Int64Var(&resolveFlags.Seed, "seed", 0, "Random seed for reproducible selection")
	f.BoolVar(&resolveFlags.PreferHighest, "prefer-highest", false, "Always pick the top-scored candidate")
	f.StringArrayVar(&resolveFlags.Overrides, "override", nil, "Pin a slot to an asset, slot=assetID (repeatable)")
	f.StringArrayVar(&resolveFlags.Zones, "zone", nil, "Replace a slot's safe zones, slot=zone1,zone2 (repeatable)")
	f.StringVarP(&resolveFlags.Format, "format", "f", "json", "Output format: json or text")
	_ = resolveCmd.MarkFlagRequired("template")
	_ = resolveCmd.MarkFlagRequired("catalog")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(ctx context.Context, w io.Writer, opts resolveOptions) error {
	if opts.Format != "json" && opts.Format != "text" {
		return fmt.Errorf("unknown format %q (want json or text)", opts.Format)
	}

	overrides, err := cli.ParseAssignments(opts.Overrides)
	if err != nil {
		return fmt.Errorf("--override: %w", err)
	}
	catalogPath, err := cli.ResolveFile(opts.CatalogPath)
	if err != nil {
		return err
	}

	engine, err := loadEngine(opts.ConfigPath)
	if err != nil {
		return err
	}
	zones, err := cli.ParseZoneOverrides(opts.Zones, engine.Rules)
	if err != nil {
		return fmt.Errorf("--zone: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	reader := &catalog.FileReader{Path: catalogPath}
	assets, err := reader.ListApprovedAssets(ctx)
	if err != nil {
		return err
	}

	p := compose.Personalization{
		ChildName: opts.Name,
		Theme:     opts.Theme,
		Overrides: overrides,
	}
	if opts.HasAge {
		age := opts.Age
		p.Age = &age
	}
	o := compose.Options{
		PreferHighestScore: opts.PreferHighest,
		SafeZoneOverrides:  zones,
	}
	if opts.HasSeed {
		seed := opts.Seed
		o.RandomSeed = &seed
	}

	start := time.Now()
	comp, err := engine.Resolver().ResolveByID(opts.TemplateID, assets, p, o)
	if err != nil {
		return err
	}
	log.Info().
		Str("template", comp.TemplateID).
		Int("assets", len(assets)).
		Int("missing", len(comp.Missing)).
		Dur("elapsed", time.Since(start)).
		Msg("Composition resolved")

	if opts.Format == "text" {
		cli.WriteComposition(w, comp)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(comp)
}
