package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// fakeAPI is a small in-memory spreadsheet backend used in unit tests.
type fakeAPI struct {
	tables      map[string][][]string // "spreadsheetID/tab" -> rows
	updates     map[string][]string   // "spreadsheetID/range" -> column values
	copyCalls   int
	nextCopyID  string
	failCopy    bool
	failRead    bool
	failAppend  bool
	failRanges  map[string]bool // ranges whose update should fail
	updateOrder []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		tables:     map[string][][]string{},
		updates:    map[string][]string{},
		nextCopyID: "cloned-sheet-1",
		failRanges: map[string]bool{},
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func (f *fakeAPI) key(spreadsheetID, suffix string) string {
	return spreadsheetID + "/" + suffix
}

func (f *fakeAPI) ReadTable(ctx context.Context, spreadsheetID, tab string) ([][]string, error) {
	if f.failRead {
		return nil, errors.New("simulated read failure")
	}
	return f.tables[f.key(spreadsheetID, tab)], nil
}

func (f *fakeAPI) AppendRow(ctx context.Context, spreadsheetID, tab string, row []string) error {
	if f.failAppend {
		return errors.New("simulated append failure")
	}
	k := f.key(spreadsheetID, tab)
	f.tables[k] = append(f.tables[k], row)
	return nil
}

func (f *fakeAPI) UpdateColumn(ctx context.Context, spreadsheetID, rangeA1 string, values []string) error {
	if f.failRanges[rangeA1] {
		return fmt.Errorf("simulated update failure for %s", rangeA1)
	}
	k := f.key(spreadsheetID, rangeA1)
	f.updates[k] = values
	f.updateOrder = append(f.updateOrder, rangeA1)
	return nil
}

func (f *fakeAPI) CopySpreadsheet(ctx context.Context, templateID, name string) (string, error) {
	f.copyCalls++
	if f.failCopy {
		return "", errors.New("simulated copy failure")
	}
	return fmt.Sprintf("%s-%d", f.nextCopyID, f.copyCalls), nil
}
