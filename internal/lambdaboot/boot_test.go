package lambdaboot

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestInitCatalogReader_Snapshot(t *testing.T) {
	t.Setenv(EnvCatalogSnapshotKey, "catalog/approved.json.zst")
	client := s3.New(s3.Options{Region: "us-east-1"})
	s3s := &S3Clients{Client: client, Presigner: s3.NewPresignClient(client), Bucket: "assets"}

	reader, source := InitCatalogReader(aws.Config{}, s3s)
	if reader == nil {
		t.Fatal("expected a reader")
	}
	if source != "s3://assets/catalog/approved.json.zst" {
		t.Errorf("source = %q", source)
	}
}

func TestInitCatalogReader_Table(t *testing.T) {
	t.Setenv(EnvCatalogSnapshotKey, "catalog/approved.json.zst")
	t.Setenv(EnvCatalogTable, "kidvid-catalog")

	// Without a bucket the snapshot key cannot be used.
	reader, source := InitCatalogReader(aws.Config{Region: "us-east-1"}, nil)
	if reader == nil {
		t.Fatal("expected a reader")
	}
	if source != "dynamodb:kidvid-catalog" {
		t.Errorf("source = %q", source)
	}
}
