package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fpang/kidvid-composer/internal/catalog"
	"github.com/fpang/kidvid-composer/internal/compose"
)

func flushed(t *testing.T, rec *Recorder) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	rec.WithOutput(&buf).Flush()

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}
	return doc
}

func TestNew_FunctionNameDimension(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "TestFunction")

	r := New("TestNamespace")
	if r.dimensions["FunctionName"] != "TestFunction" {
		t.Errorf("expected FunctionName dimension TestFunction, got %s", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	rec := New(Namespace)
	rec.now = func() time.Time { return time.UnixMilli(1700000000000) }
	rec.Dimension("TemplateType", "lullaby").
		Metric("ResolveLatencyMs", 12.5, UnitMilliseconds).
		Count("Resolutions").
		Property("resolutionId", "abc-123")
	doc := flushed(t, rec)

	awsMap, ok := doc["_aws"].(map[string]any)
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if awsMap["Timestamp"] != float64(1700000000000) {
		t.Errorf("Timestamp = %v", awsMap["Timestamp"])
	}
	cwArr, ok := awsMap["CloudWatchMetrics"].([]any)
	if !ok || len(cwArr) != 1 {
		t.Fatal("CloudWatchMetrics should hold one entry")
	}
	cw := cwArr[0].(map[string]any)
	if cw["Namespace"] != Namespace {
		t.Errorf("expected namespace %s, got %v", Namespace, cw["Namespace"])
	}
	defs := cw["Metrics"].([]any)
	if first := defs[0].(map[string]any); first["Name"] != "ResolveLatencyMs" {
		t.Errorf("metric definitions should be sorted, got %v", defs)
	}

	if doc["TemplateType"] != "lullaby" {
		t.Errorf("expected TemplateType=lullaby, got %v", doc["TemplateType"])
	}
	if doc["ResolveLatencyMs"] != 12.5 {
		t.Errorf("expected ResolveLatencyMs=12.5, got %v", doc["ResolveLatencyMs"])
	}
	if doc["Resolutions"] != float64(1) {
		t.Errorf("expected Resolutions=1, got %v", doc["Resolutions"])
	}
	if doc["resolutionId"] != "abc-123" {
		t.Errorf("expected resolutionId=abc-123, got %v", doc["resolutionId"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	var buf bytes.Buffer
	New("Test").WithOutput(&buf).Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recorder, got: %s", buf.String())
	}
}

func TestRecordResolution(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	ref := &catalog.AssetReference{AssetID: "a"}
	c := &compose.ResolvedComposition{
		ResolutionID: "res-1",
		TemplateID:   "name-spelling",
		TemplateType: "name-video",
		Slots: map[string]compose.SlotResolution{
			"intro_background": {Asset: ref},
			"letter_visual":    {PerLetter: true, Letters: []*catalog.AssetReference{ref, nil, ref}},
		},
		Missing: []string{"outro_background", "letter_visual[1]"},
	}

	var buf bytes.Buffer
	RecordResolution(New(Namespace).WithOutput(&buf), c, 25*time.Millisecond)

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid EMF: %v", err)
	}
	want := map[string]any{
		"TemplateType":     "name-video",
		"ResolveLatencyMs": float64(25),
		"SlotsResolved":    float64(3),
		"SlotsMissing":     float64(1),
		"LettersMissing":   float64(1),
		"templateId":       "name-spelling",
	}
	for k, v := range want {
		if doc[k] != v {
			t.Errorf("%s = %v, want %v", k, doc[k], v)
		}
	}
}
