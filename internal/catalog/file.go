package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// FileReader reads a catalog snapshot exported as a JSON array. Paths ending
// in .zst are decompressed with zstd first.
type FileReader struct {
	Path string
}

var _ Reader = (*FileReader)(nil)

// ListApprovedAssets reads the whole file on every call.
func (f *FileReader) ListApprovedAssets(ctx context.Context) ([]Asset, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	assets, err := ReadSnapshot(file, IsCompressedName(f.Path))
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", f.Path, err)
	}
	log.Debug().Str("path", f.Path).Int("assets", len(assets)).Msg("Catalog snapshot loaded from file")
	return assets, nil
}

// IsCompressedName reports whether a snapshot name carries the .zst suffix.
func IsCompressedName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zst")
}

// ReadSnapshot decodes a snapshot, decompressing it with zstd first when
// compressed is set.
func ReadSnapshot(r io.Reader, compressed bool) ([]Asset, error) {
	if !compressed {
		return Decode(r)
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	return Decode(dec)
}

// Decode parses a JSON array of assets.
func Decode(r io.Reader) ([]Asset, error) {
	var assets []Asset
	if err := json.NewDecoder(r).Decode(&assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// WriteCompressed writes assets as a zstd-compressed JSON array.
func WriteCompressed(w io.Writer, assets []Asset) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(assets); err != nil {
		enc.Close()
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}
