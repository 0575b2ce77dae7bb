package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/request"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// dynamoMock serves a fixed record set from Scan.
type dynamoMock struct {
	records []request.Record
	fail    bool
}

func (m *dynamoMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	if m.fail {
		return nil, errors.New("simulated scan failure")
	}
	items := make([]map[string]types.AttributeValue, 0, len(m.records))
	for _, rec := range m.records {
		item, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &dyn.ScanOutput{Items: items}, nil
}

// s3Mock reports an empty partition.
type s3Mock struct {
	listCalls int
}

func (m *s3Mock) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.listCalls++
	return &s3.ListObjectsV2Output{}, nil
}

func (m *s3Mock) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("no objects in mock")
}

// cloudwatchMock counts metric publications.
type cloudwatchMock struct {
	putCalls int
	lastData *cloudwatch.PutMetricDataInput
}

func (m *cloudwatchMock) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.putCalls++
	m.lastData = params
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// sqsMock captures sent message bodies.
type sqsMock struct {
	bodies []string
}

func (m *sqsMock) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.bodies = append(m.bodies, *params.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

// sheetsMock is an in-memory sheets.API.
type sheetsMock struct {
	updates   map[string][]string
	failWrite bool
}

func newSheetsMock() *sheetsMock {
	return &sheetsMock{updates: map[string][]string{}}
}

func (m *sheetsMock) ReadTable(ctx context.Context, spreadsheetID, tab string) ([][]string, error) {
	return nil, nil
}

func (m *sheetsMock) AppendRow(ctx context.Context, spreadsheetID, tab string, row []string) error {
	return nil
}

func (m *sheetsMock) UpdateColumn(ctx context.Context, spreadsheetID, rangeA1 string, values []string) error {
	if m.failWrite {
		return fmt.Errorf("simulated write failure for %s", rangeA1)
	}
	m.updates[rangeA1] = values
	return nil
}

func (m *sheetsMock) CopySpreadsheet(ctx context.Context, templateID, name string) (string, error) {
	return "", errors.New("not used")
}
