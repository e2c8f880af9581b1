// Package s3util holds the S3 helpers used by the composer: presigned asset
// URLs and catalog snapshots stored as objects.
package s3util

import (
	"context"
	"fmt"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/catalog"
)

// DefaultURLTTL is how long presigned asset URLs stay valid by default. It
// must outlive a render job.
const DefaultURLTTL = 6 * time.Hour

// PresignAPI is the subset of s3.PresignClient used here.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// URLSigner fills asset URLs from their storage keys.
type URLSigner struct {
	presigner PresignAPI
	bucket    string
	ttl       time.Duration
}

// NewURLSigner returns a signer for objects in bucket. A non-positive ttl
// uses DefaultURLTTL.
func NewURLSigner(presigner PresignAPI, bucket string, ttl time.Duration) *URLSigner {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &URLSigner{presigner: presigner, bucket: bucket, ttl: ttl}
}

// TTL is the lifetime of generated URLs.
func (s *URLSigner) TTL() time.Duration { return s.ttl }

// GeneratePresignedURL creates a presigned GET URL for key.
func (s *URLSigner) GeneratePresignedURL(ctx context.Context, key string) (string, error) {
	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket, Key: &key,
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign GetObject %s: %w", key, err)
	}
	return result.URL, nil
}

// SignAssets returns a copy of assets where every asset with a StorageKey
// has its URL replaced by a presigned one. Assets without a key keep their
// URL.
func (s *URLSigner) SignAssets(ctx context.Context, assets []catalog.Asset) ([]catalog.Asset, error) {
	out := make([]catalog.Asset, len(assets))
	copy(out, assets)
	signed := 0
	for i := range out {
		if out[i].StorageKey == "" {
			continue
		}
		url, err := s.GeneratePresignedURL(ctx, out[i].StorageKey)
		if err != nil {
			return nil, err
		}
		out[i].URL = url
		signed++
	}
	log.Debug().Str("bucket", s.bucket).Int("signed", signed).Dur("ttl", s.ttl).Msg("Asset URLs presigned")
	return out, nil
}

// Wrap returns a catalog.Reader whose snapshots carry presigned URLs.
func (s *URLSigner) Wrap(r catalog.Reader) catalog.Reader {
	return &signedReader{next: r, signer: s}
}

type signedReader struct {
	next   catalog.Reader
	signer *URLSigner
}

func (r *signedReader) ListApprovedAssets(ctx context.Context) ([]catalog.Asset, error) {
	assets, err := r.next.ListApprovedAssets(ctx)
	if err != nil {
		return nil, err
	}
	return r.signer.SignAssets(ctx, assets)
}
