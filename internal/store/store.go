// Package store reads and seeds the approved-asset catalog in DynamoDB.
//
// The table uses a single-table layout: every asset is one item with
// PK = ASSET#{assetId} and SK = META, plus a status attribute. A global
// secondary index on status (StatusIndex) lets the composer read every
// approved asset in one paginated Query without a table scan.
package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Key and index constants for the catalog table.
const (
	pkPrefix = "ASSET#"
	skMeta   = "META"

	// StatusIndexName is the GSI keyed on the status attribute.
	StatusIndexName = "StatusIndex"

	// StatusApproved marks assets cleared for use in compositions.
	StatusApproved = "APPROVED"

	// maxBatchWrite is the DynamoDB BatchWriteItem limit per call.
	maxBatchWrite = 25

	// maxUnprocessedRetries bounds resubmission of throttled batch items.
	maxUnprocessedRetries = 5
)

// DynamoAPI is the subset of the DynamoDB client the catalog uses.
type DynamoAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// assetPK returns the partition key for an asset.
func assetPK(assetID string) string {
	return pkPrefix + assetID
}
