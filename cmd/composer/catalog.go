package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/cli"
	"github.com/fpang/kidvid-composer/internal/lambdaboot"
	"github.com/fpang/kidvid-composer/internal/s3util"
	"github.com/fpang/kidvid-composer/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	pushCatalogFlag string
	pushTableFlag   string
	pushBucketFlag  string
	pushKeyFlag     string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the approved asset catalog",
}

var catalogPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a local catalog snapshot to DynamoDB and/or S3",
	Long: `Push reads a local catalog snapshot and writes it to the catalog table
(--table), to a zstd-compressed snapshot object (--bucket and --key), or both.
Every asset written to the table is marked approved.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCatalogPush(cmd.Context()); err != nil {
			log.Fatal().Err(err).Msg("Catalog push failed")
		}
	},
}

func init() {
	f := catalogPushCmd.Flags()
	f.StringVarP(&pushCatalogFlag, "catalog", "c", "", "Catalog snapshot file, .json or .json.zst (required)")
	f.StringVar(&pushTableFlag, "table", "", "DynamoDB catalog table name")
	f.StringVar(&pushBucketFlag, "bucket", "", "S3 bucket for the snapshot object")
	f.StringVar(&pushKeyFlag, "key", "catalog/approved.json.zst", "S3 key for the snapshot object")
	_ = catalogPushCmd.MarkFlagRequired("catalog")

	catalogCmd.AddCommand(catalogPushCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogPush(ctx context.Context) error {
	if pushTableFlag == "" && pushBucketFlag == "" {
		return fmt.Errorf("nothing to do: set --table, --bucket, or both")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path, err := cli.ResolveFile(pushCatalogFlag)
	if err != nil {
		return err
	}
	assets, err := (&catalog.FileReader{Path: path}).ListApprovedAssets(ctx)
	if err != nil {
		return err
	}

	clients := lambdaboot.InitAWS()
	if pushTableFlag != "" {
		cat := store.NewDynamoCatalog(dynamodb.NewFromConfig(clients.Config), pushTableFlag)
		if err := cat.PutAssets(ctx, assets); err != nil {
			return err
		}
		log.Info().Str("table", pushTableFlag).Int("assets", len(assets)).Msg("Catalog written to DynamoDB")
	}
	if pushBucketFlag != "" {
		if err := s3util.PublishSnapshot(ctx, s3.NewFromConfig(clients.Config), pushBucketFlag, pushKeyFlag, assets); err != nil {
			return err
		}
		log.Info().Str("bucket", pushBucketFlag).Str("key", pushKeyFlag).Int("assets", len(assets)).Msg("Catalog snapshot published")
	}
	return nil
}
