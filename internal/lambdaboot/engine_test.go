package lambdaboot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/fpang/kidvid-composer/internal/s3util"
)

type fakeSSM struct {
	value string
	err   error
	names []string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.names = append(f.names, *in.Name)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(f.value)}}, nil
}

func TestFetchEngineConfig(t *testing.T) {
	fake := &fakeSSM{value: "keywords:\n  mood: [sparkly]\n"}
	cfg, err := FetchEngineConfig(context.Background(), fake, "/composer/engine")
	if err != nil {
		t.Fatalf("FetchEngineConfig() error: %v", err)
	}
	if len(cfg.Keywords.Mood) != 1 || cfg.Keywords.Mood[0] != "sparkly" {
		t.Errorf("mood = %v", cfg.Keywords.Mood)
	}
	if len(cfg.Templates) == 0 {
		t.Error("templates should fall back to defaults")
	}
	if fake.names[0] != "/composer/engine" {
		t.Errorf("param = %s", fake.names[0])
	}
}

func TestFetchEngineConfig_Errors(t *testing.T) {
	boom := errors.New("ParameterNotFound")
	if _, err := FetchEngineConfig(context.Background(), &fakeSSM{err: boom}, "/x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped SSM error, got %v", err)
	}
	if _, err := FetchEngineConfig(context.Background(), &fakeSSM{value: "templates: [oops"}, "/x"); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadEngineConfig_Defaults(t *testing.T) {
	t.Setenv(EnvEngineConfigParam, "")
	fake := &fakeSSM{}
	engine := LoadEngineConfig(fake)
	if engine.Registry == nil || len(engine.Registry.IDs()) == 0 {
		t.Fatal("expected builtin templates")
	}
	if len(fake.names) != 0 {
		t.Error("SSM must not be called without a parameter name")
	}
}

func TestURLSignerTTL(t *testing.T) {
	clients := &S3Clients{Bucket: "media"}

	tests := []struct {
		env  string
		want time.Duration
	}{
		{"", s3util.DefaultURLTTL},
		{"not-a-duration", s3util.DefaultURLTTL},
		{"-5m", s3util.DefaultURLTTL},
		{"30m", 30 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(EnvAssetURLTTL, tt.env)
			if got := clients.URLSigner().TTL(); got != tt.want {
				t.Errorf("TTL = %v, want %v", got, tt.want)
			}
		})
	}
}
