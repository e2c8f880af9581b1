// Package catalog defines the read-only view of approved creative assets the
// composition engine selects from, and the thin reference projection handed
// to the render pipeline.
//
// Assets are created and approved elsewhere; nothing in this module mutates
// them.
package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/fpang/kidvid-composer/internal/safezone"
)

// MediaType is the kind of media an asset carries.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
)

// Well-known metadata keys.
const (
	// MetaReviewSafeZones holds reviewer-assigned zones, comma separated.
	MetaReviewSafeZones = "review_safe_zones"
	MetaMinAge          = "min_age"
	MetaMaxAge          = "max_age"
)

// Asset is an approved creative asset. An asset with no SafeZones is
// zone-agnostic.
type Asset struct {
	ID          string            `json:"id" dynamodbav:"id"`
	MediaType   MediaType         `json:"mediaType" dynamodbav:"mediaType"`
	Theme       string            `json:"theme" dynamodbav:"theme"`
	Tags        []string          `json:"tags,omitempty" dynamodbav:"tags,omitempty"`
	SafeZones   []safezone.ID     `json:"safeZones,omitempty" dynamodbav:"safeZones,omitempty"`
	PurposeHint string            `json:"purposeHint,omitempty" dynamodbav:"purposeHint,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
	URL         string            `json:"url,omitempty" dynamodbav:"url,omitempty"`
	StorageKey  string            `json:"storageKey,omitempty" dynamodbav:"storageKey,omitempty"`
}

// AssetReference is what the render pipeline consumes as composition props.
type AssetReference struct {
	AssetID   string    `json:"assetId"`
	URL       string    `json:"url"`
	MediaType MediaType `json:"mediaType"`
}

// Reference projects the asset to an AssetReference.
func (a Asset) Reference() AssetReference {
	return AssetReference{AssetID: a.ID, URL: a.URL, MediaType: a.MediaType}
}

// ZoneAgnostic reports whether the asset declares no safe zone.
func (a Asset) ZoneAgnostic() bool {
	return len(a.SafeZones) == 0
}

// HasZone reports whether zone is one of the asset's declared zones.
func (a Asset) HasZone(zone safezone.ID) bool {
	for _, z := range a.SafeZones {
		if z == zone {
			return true
		}
	}
	return false
}

// ReviewSafeZones returns the reviewer-assigned zones from metadata.
func (a Asset) ReviewSafeZones() []safezone.ID {
	raw := strings.TrimSpace(a.Metadata[MetaReviewSafeZones])
	if raw == "" {
		return nil
	}
	var out []safezone.ID
	for _, part := range strings.Split(raw, ",") {
		if z := strings.ToLower(strings.TrimSpace(part)); z != "" {
			out = append(out, safezone.ID(z))
		}
	}
	return out
}

// AgeRange returns the declared min/max age. A missing or unparsable bound
// is reported with its has flag false.
func (a Asset) AgeRange() (minAge int, hasMin bool, maxAge int, hasMax bool) {
	if v, err := strconv.Atoi(strings.TrimSpace(a.Metadata[MetaMinAge])); err == nil {
		minAge, hasMin = v, true
	}
	if v, err := strconv.Atoi(strings.TrimSpace(a.Metadata[MetaMaxAge])); err == nil {
		maxAge, hasMax = v, true
	}
	return minAge, hasMin, maxAge, hasMax
}

// Reader supplies a consistent, point-in-time snapshot of approved assets.
type Reader interface {
	ListApprovedAssets(ctx context.Context) ([]Asset, error)
}

// Index maps asset IDs to positions in a snapshot.
func Index(assets []Asset) map[string]int {
	idx := make(map[string]int, len(assets))
	for i, a := range assets {
		if _, dup := idx[a.ID]; !dup {
			idx[a.ID] = i
		}
	}
	return idx
}
