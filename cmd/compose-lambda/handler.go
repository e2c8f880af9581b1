package main

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/api"
	"github.com/fpang/kidvid-composer/internal/compose"
	"github.com/fpang/kidvid-composer/internal/renderhandoff"
)

// ComposeEvent is the Lambda input.
type ComposeEvent struct {
	TemplateID      string                  `json:"templateId"`
	Personalization compose.Personalization `json:"personalization"`
	Options         compose.Options         `json:"options"`
	SubmitRender    bool                    `json:"submitRender"`
}

// handle runs one event. Request errors, configuration errors and
// incomplete compositions are reported in the result with a nil error so
// Step Functions routes them on the payload instead of retrying;
// infrastructure failures return the error.
func handle(ctx context.Context, s *api.Service, event ComposeEvent) (*api.ComposeResult, error) {
	log.Info().
		Str("templateId", event.TemplateID).
		Bool("submitRender", event.SubmitRender).
		Msg("Compose Lambda invoked")

	result, err := s.Compose(ctx, api.ComposeRequest(event))
	if err == nil {
		return result, nil
	}
	if errors.Is(err, api.ErrInvalidRequest) || api.IsConfigError(err) {
		log.Warn().Err(err).Str("templateId", event.TemplateID).Msg("Compose request rejected")
		return result, nil
	}
	if errors.Is(err, renderhandoff.ErrIncomplete) {
		log.Warn().
			Str("templateId", event.TemplateID).
			Int("missing", result.MissingCount).
			Msg("Render not submitted, composition incomplete")
		return result, nil
	}
	log.Error().Err(err).Str("templateId", event.TemplateID).Msg("Compose failed")
	return result, err
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}
