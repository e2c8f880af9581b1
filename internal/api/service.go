// Package api is the composer's request surface: a Service that snapshots
// the catalog, resolves a template and optionally hands the result to the
// render pipeline, and an HTTP handler exposing it.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/compose"
	"github.com/fpang/kidvid-composer/internal/metrics"
	"github.com/fpang/kidvid-composer/internal/renderhandoff"
	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

var (
	// ErrInvalidRequest marks malformed compose requests.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRenderDisabled is returned when a render is requested but no
	// submitter is configured.
	ErrRenderDisabled = errors.New("render submission is not configured")
)

// Submitter hands a composition to the render pipeline.
type Submitter interface {
	Submit(ctx context.Context, c *compose.ResolvedComposition) (string, error)
}

// ComposeRequest asks for one composition of a registered template.
type ComposeRequest struct {
	TemplateID      string                  `json:"templateId"`
	Personalization compose.Personalization `json:"personalization"`
	Options         compose.Options         `json:"options"`
	SubmitRender    bool                    `json:"submitRender,omitempty"`
}

// ComposeResult is returned to Lambda and HTTP callers.
type ComposeResult struct {
	ResolutionID string                       `json:"resolutionId,omitempty"`
	Composition  *compose.ResolvedComposition `json:"composition,omitempty"`
	MissingCount int                          `json:"missingCount"`
	ExecutionArn string                       `json:"executionArn,omitempty"`
	Error        string                       `json:"error,omitempty"`
}

// Service wires the resolver to its collaborators. Submitter and
// NewRecorder are optional.
type Service struct {
	Resolver    *compose.Resolver
	Catalog     catalog.Reader
	Submitter   Submitter
	NewRecorder func() *metrics.Recorder
}

// Compose runs one request end to end. Each call reads a fresh catalog
// snapshot; the resolver never sees a catalog that changes mid-call.
func (s *Service) Compose(ctx context.Context, req ComposeRequest) (*ComposeResult, error) {
	if err := validateRequest(req); err != nil {
		return &ComposeResult{Error: err.Error()}, err
	}

	start := time.Now()
	assets, err := s.Catalog.ListApprovedAssets(ctx)
	if err != nil {
		err = fmt.Errorf("read catalog: %w", err)
		return &ComposeResult{Error: "catalog unavailable"}, err
	}

	c, err := s.Resolver.ResolveByID(req.TemplateID, assets, req.Personalization, req.Options)
	if err != nil {
		return &ComposeResult{Error: err.Error()}, err
	}
	elapsed := time.Since(start)

	if s.NewRecorder != nil {
		metrics.RecordResolution(s.NewRecorder(), c, elapsed)
	}

	result := &ComposeResult{
		ResolutionID: c.ResolutionID,
		Composition:  c,
		MissingCount: len(c.Missing),
	}
	evt := log.Info()
	if len(c.Missing) > 0 {
		evt = log.Warn().Strs("missing", c.Missing)
	}
	evt.Str("resolutionId", c.ResolutionID).
		Str("templateId", c.TemplateID).
		Int("catalogSize", len(assets)).
		Dur("elapsed", elapsed).
		Msg("Composition resolved")

	if !req.SubmitRender {
		return result, nil
	}
	if s.Submitter == nil {
		result.Error = ErrRenderDisabled.Error()
		return result, ErrRenderDisabled
	}
	arn, err := s.Submitter.Submit(ctx, c)
	if err != nil {
		if errors.Is(err, renderhandoff.ErrIncomplete) {
			result.Error = fmt.Sprintf("incomplete composition: %d missing", len(c.Missing))
		} else {
			result.Error = "render submission failed"
		}
		return result, err
	}
	result.ExecutionArn = arn
	return result, nil
}

// IsConfigError reports whether err is a template or safe-zone
// configuration defect rather than an infrastructure failure.
func IsConfigError(err error) bool {
	var zoneErr *safezone.UnknownSafeZoneError
	var tmplErr *safezone.UnknownTemplateError
	var slotErr *template.InvalidSlotConfigurationError
	return errors.As(err, &zoneErr) || errors.As(err, &tmplErr) || errors.As(err, &slotErr)
}

func validateRequest(req ComposeRequest) error {
	if req.TemplateID == "" {
		return fmt.Errorf("%w: templateId is required", ErrInvalidRequest)
	}
	if age := req.Personalization.Age; age != nil && (*age < 0 || *age > 18) {
		return fmt.Errorf("%w: age must be between 0 and 18", ErrInvalidRequest)
	}
	if n := len([]rune(req.Personalization.ChildName)); n > 40 {
		return fmt.Errorf("%w: childName is too long (%d characters)", ErrInvalidRequest, n)
	}
	return nil
}
