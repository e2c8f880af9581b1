package renderhandoff

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/compose"
)

type fakeSFN struct {
	inputs []*sfn.StartExecutionInput
	err    error
}

func (f *fakeSFN) StartExecution(_ context.Context, in *sfn.StartExecutionInput, _ ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sfn.StartExecutionOutput{ExecutionArn: aws.String("arn:aws:states:exec:" + *in.Name)}, nil
}

func composition(missing ...string) *compose.ResolvedComposition {
	return &compose.ResolvedComposition{
		ResolutionID: "3f2a",
		TemplateID:   "lullaby-classic",
		TemplateType: "lullaby",
		Slots: map[string]compose.SlotResolution{
			"background_music": {Asset: &catalog.AssetReference{AssetID: "m1", MediaType: catalog.MediaAudio}},
		},
		Missing: append([]string{}, missing...),
	}
}

func TestSubmit(t *testing.T) {
	fake := &fakeSFN{}
	s := NewStepFunctions(fake, "arn:aws:states:render")
	s.now = func() time.Time { return time.Unix(1700000000, 0) }

	arn, err := s.Submit(context.Background(), composition())
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if arn != "arn:aws:states:exec:render-3f2a" {
		t.Errorf("arn = %s", arn)
	}

	in := fake.inputs[0]
	if *in.StateMachineArn != "arn:aws:states:render" {
		t.Errorf("state machine = %s", *in.StateMachineArn)
	}
	var job struct {
		ResolutionID string         `json:"resolutionId"`
		SubmittedAt  int64          `json:"submittedAt"`
		Composition  map[string]any `json:"composition"`
	}
	if err := json.Unmarshal([]byte(*in.Input), &job); err != nil {
		t.Fatalf("input is not JSON: %v", err)
	}
	if job.ResolutionID != "3f2a" || job.SubmittedAt != 1700000000 {
		t.Errorf("job = %+v", job)
	}
	if _, ok := job.Composition["slots"].(map[string]any)["background_music"]; !ok {
		t.Error("composition slots missing from input")
	}
}

func TestSubmit_Incomplete(t *testing.T) {
	fake := &fakeSFN{}
	_, err := NewStepFunctions(fake, "arn").Submit(context.Background(), composition("letter_visual[1]"))
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if len(fake.inputs) != 0 {
		t.Error("incomplete composition must not start an execution")
	}
}

func TestSubmit_StartError(t *testing.T) {
	boom := errors.New("ExecutionAlreadyExists")
	_, err := NewStepFunctions(&fakeSFN{err: boom}, "arn").Submit(context.Background(), composition())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestExecutionName_Truncates(t *testing.T) {
	if n := ExecutionName(strings.Repeat("x", 100)); len(n) != 80 {
		t.Errorf("len = %d, want 80", len(n))
	}
}
