package request

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// scanMock is a small in-memory mock for Scan used in unit tests. It serves
// its pages slice one page at a time and chains them with LastEvaluatedKey.
type scanMock struct {
	pages     [][]Record
	scanCalls int
	failAfter int   // fail on call number failAfter (1-based); 0 disables
	failWith  error // error returned on failure; defaults to a plain error
	lastInput *dyn.ScanInput
}

func (m *scanMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.scanCalls++
	m.lastInput = params
	if m.failAfter > 0 && m.scanCalls >= m.failAfter {
		if m.failWith != nil {
			return nil, m.failWith
		}
		return nil, errors.New("simulated scan failure")
	}

	page := 0
	if params.ExclusiveStartKey != nil {
		v := params.ExclusiveStartKey["page"].(*types.AttributeValueMemberN).Value
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		page = n
	}
	if page >= len(m.pages) {
		return &dyn.ScanOutput{}, nil
	}

	items := make([]map[string]types.AttributeValue, 0, len(m.pages[page]))
	for _, rec := range m.pages[page] {
		item, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	out := &dyn.ScanOutput{Items: items}
	if page+1 < len(m.pages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"page": &types.AttributeValueMemberN{Value: strconv.Itoa(page + 1)},
		}
	}
	return out, nil
}
