package s3util

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/catalog"
)

// ObjectAPI is the subset of s3.Client used for snapshots.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SnapshotReader reads a catalog snapshot stored as one S3 object. Keys
// ending in .zst are zstd-compressed.
type SnapshotReader struct {
	Client ObjectAPI
	Bucket string
	Key    string
}

var _ catalog.Reader = (*SnapshotReader)(nil)

// ListApprovedAssets downloads and decodes the snapshot object.
func (r *SnapshotReader) ListApprovedAssets(ctx context.Context) ([]catalog.Asset, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &r.Bucket, Key: &r.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject %s: %w", r.Key, err)
	}
	defer result.Body.Close()

	assets, err := catalog.ReadSnapshot(result.Body, catalog.IsCompressedName(r.Key))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", r.Key, err)
	}
	log.Debug().Str("bucket", r.Bucket).Str("key", r.Key).Int("assets", len(assets)).Msg("Catalog snapshot loaded from S3")
	return assets, nil
}

// PublishSnapshot writes assets as a zstd-compressed snapshot object.
func PublishSnapshot(ctx context.Context, client ObjectAPI, bucket, key string, assets []catalog.Asset) error {
	var buf bytes.Buffer
	if err := catalog.WriteCompressed(&buf, assets); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/zstd"),
		Tagging:     ProjectTagging(),
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s: %w", key, err)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Int("assets", len(assets)).Int("bytes", buf.Len()).Msg("Catalog snapshot published")
	return nil
}
