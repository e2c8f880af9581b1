package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/kidvid-composer/internal/catalog"
)

// DynamoCatalog implements catalog.Reader over the catalog table.
type DynamoCatalog struct {
	client    DynamoAPI
	tableName string
}

// Compile-time interface check.
var _ catalog.Reader = (*DynamoCatalog)(nil)

// NewDynamoCatalog creates a DynamoCatalog for the given table. The client
// should be initialized from the shared AWS config.
func NewDynamoCatalog(client DynamoAPI, tableName string) *DynamoCatalog {
	return &DynamoCatalog{client: client, tableName: tableName}
}

// TableName returns the backing table.
func (s *DynamoCatalog) TableName() string { return s.tableName }

// ListApprovedAssets queries the status index for approved assets, following
// pagination until the index is exhausted. The returned slice is the
// snapshot for one resolution call.
func (s *DynamoCatalog) ListApprovedAssets(ctx context.Context) ([]catalog.Asset, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.tableName,
		IndexName:              aws.String(StatusIndexName),
		KeyConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: StatusApproved},
		},
	}

	var assets []catalog.Asset
	pages := 0
	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("Query %s status=%s: %w", StatusIndexName, StatusApproved, err)
		}
		pages++

		for _, item := range result.Items {
			var a catalog.Asset
			if err := attributevalue.UnmarshalMap(item, &a); err != nil {
				return nil, fmt.Errorf("unmarshal asset: %w", err)
			}
			if a.ID == "" {
				log.Warn().Interface("pk", item["PK"]).Msg("Skipping catalog item without id")
				continue
			}
			assets = append(assets, a)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	log.Debug().Str("table", s.tableName).Int("assets", len(assets)).Int("pages", pages).Msg("Catalog snapshot loaded from DynamoDB")
	return assets, nil
}

// PutAssets writes assets as approved catalog items, replacing any existing
// item with the same ID. Used to seed a table from an exported snapshot.
func (s *DynamoCatalog) PutAssets(ctx context.Context, assets []catalog.Asset) error {
	for i := 0; i < len(assets); i += maxBatchWrite {
		end := i + maxBatchWrite
		if end > len(assets) {
			end = len(assets)
		}

		requests := make([]types.WriteRequest, 0, end-i)
		for _, a := range assets[i:end] {
			item, err := assetItem(a)
			if err != nil {
				return err
			}
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}
		if err := s.batchWrite(ctx, requests); err != nil {
			return err
		}
	}
	log.Info().Str("table", s.tableName).Int("assets", len(assets)).Msg("Catalog assets written")
	return nil
}

func (s *DynamoCatalog) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for attempt := 0; len(requests) > 0; attempt++ {
		if attempt > maxUnprocessedRetries {
			return fmt.Errorf("BatchWriteItem: %d items still unprocessed after %d retries", len(requests), maxUnprocessedRetries)
		}
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("BatchWriteItem put (%d items): %w", len(requests), err)
		}
		requests = out.UnprocessedItems[s.tableName]
	}
	return nil
}

// assetItem marshals an asset and adds the key and status attributes.
func assetItem(a catalog.Asset) (map[string]types.AttributeValue, error) {
	if a.ID == "" {
		return nil, fmt.Errorf("asset without id")
	}
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return nil, fmt.Errorf("marshal asset %s: %w", a.ID, err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: assetPK(a.ID)}
	item["SK"] = &types.AttributeValueMemberS{Value: skMeta}
	item["status"] = &types.AttributeValueMemberS{Value: StatusApproved}
	return item, nil
}
