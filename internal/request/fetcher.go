package request

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/awsclient"
	"github.com/automail/analytics-pipeline/internal/jptime"
)

// Fetcher retrieves request records from the DynamoDB table.
type Fetcher struct {
	client    awsclient.DynamoDBAPI
	tableName string
	log       *logrus.Logger
}

// NewFetcher returns a configured Fetcher.
func NewFetcher(client awsclient.DynamoDBAPI, tableName string, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client:    client,
		tableName: tableName,
		log:       log,
	}
}

// FetchResult is a tagged record set. Degraded distinguishes "the store had
// nothing" from "the fetch failed and we substituted empty data".
type FetchResult struct {
	Records  []Record
	Degraded bool
	Reason   string
}

// FetchWindow returns all records whose created_at falls within the 3-day
// window [day-1, day+1] (inclusive). The slack tolerates clock skew at the
// source; the exact day filter happens after normalization. Pagination via
// LastEvaluatedKey is followed until exhausted. A fetch error does not
// propagate: the result is empty and tagged degraded so the rest of the day's
// run can proceed with zero input.
func (f *Fetcher) FetchWindow(ctx context.Context, day jptime.CivilDate) FetchResult {
	start := day.AddDays(-1).Midnight().Unix()
	end := day.AddDays(1).Midnight().Unix()

	records, err := f.scanBetween(ctx, start, end)
	if err != nil {
		reason := err.Error()
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			reason = apiErr.ErrorCode()
		}
		f.log.Warnf("[WARNING] failed to fetch requests from %s: %v", f.tableName, err)
		return FetchResult{Degraded: true, Reason: reason}
	}
	return FetchResult{Records: records}
}

func (f *Fetcher) scanBetween(ctx context.Context, start, end int64) ([]Record, error) {
	input := &dyn.ScanInput{
		TableName:        &f.tableName,
		FilterExpression: awsString("created_at BETWEEN :start AND :end"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":start": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", start)},
			":end":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", end)},
		},
	}

	var records []Record
	for {
		out, err := f.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", f.tableName, err)
		}
		for _, item := range out.Items {
			var rec Record
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal request item: %w", err)
			}
			records = append(records, rec)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return records, nil
}

// Helper
func awsString(s string) *string { return &s }
