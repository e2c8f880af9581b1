// Package renderhandoff passes resolved compositions to the external render
// pipeline, which runs as a Step Functions state machine.
package renderhandoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/compose"
)

// ErrIncomplete is returned when a composition still has missing content.
var ErrIncomplete = errors.New("composition has missing assets")

// StartExecutionAPI is the subset of the Step Functions client used here.
type StartExecutionAPI interface {
	StartExecution(ctx context.Context, in *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
}

// Job is the state machine input.
type Job struct {
	ResolutionID string                       `json:"resolutionId"`
	TemplateID   string                       `json:"templateId"`
	SubmittedAt  int64                        `json:"submittedAt"`
	Composition  *compose.ResolvedComposition `json:"composition"`
}

// StepFunctions starts one render execution per composition.
type StepFunctions struct {
	client          StartExecutionAPI
	stateMachineArn string
	now             func() time.Time
}

// NewStepFunctions returns a submitter for the given state machine.
func NewStepFunctions(client StartExecutionAPI, stateMachineArn string) *StepFunctions {
	return &StepFunctions{client: client, stateMachineArn: stateMachineArn, now: time.Now}
}

// Submit starts a render for c and returns the execution ARN. The execution
// is named after the resolution ID, so resubmitting the same composition is
// rejected by Step Functions rather than rendered twice.
func (s *StepFunctions) Submit(ctx context.Context, c *compose.ResolvedComposition) (string, error) {
	if !c.Complete() {
		return "", fmt.Errorf("%w: %v", ErrIncomplete, c.Missing)
	}

	input, err := json.Marshal(Job{
		ResolutionID: c.ResolutionID,
		TemplateID:   c.TemplateID,
		SubmittedAt:  s.now().Unix(),
		Composition:  c,
	})
	if err != nil {
		return "", fmt.Errorf("marshal render job: %w", err)
	}

	out, err := s.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(s.stateMachineArn),
		Input:           aws.String(string(input)),
		Name:            aws.String(ExecutionName(c.ResolutionID)),
	})
	if err != nil {
		return "", fmt.Errorf("StartExecution %s: %w", c.ResolutionID, err)
	}

	arn := aws.ToString(out.ExecutionArn)
	log.Info().
		Str("resolutionId", c.ResolutionID).
		Str("templateId", c.TemplateID).
		Str("executionArn", arn).
		Msg("Render pipeline started via Step Functions")
	return arn, nil
}

// ExecutionName derives the Step Functions execution name. Names are limited
// to 80 characters.
func ExecutionName(resolutionID string) string {
	name := "render-" + resolutionID
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}
