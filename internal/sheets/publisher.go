package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/join"
)

// columnLetters addresses the 17 output columns A..Q.
var columnLetters = [join.ColumnCount]string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O", "P", "Q",
}

// Publisher writes aggregated rows into a day's spreadsheet tab.
type Publisher struct {
	api API
	log *logrus.Logger
}

// NewPublisher returns a Publisher.
func NewPublisher(api API, log *logrus.Logger) *Publisher {
	return &Publisher{api: api, log: log}
}

// Publish writes each output column as an independent single-column range
// starting at row 2 (row 1 holds headers managed in the template). A failed
// range is logged and the remaining ranges are still attempted; the combined
// error is returned so the run reports failure without rolling back the
// columns that did land. Rows from a previous, larger run below the new row
// count are left in place.
func (p *Publisher) Publish(ctx context.Context, spreadsheetID, tab string, rows []join.AggregatedRow) error {
	if len(rows) == 0 {
		p.log.Infof("no rows to publish for tab %s", tab)
		return nil
	}

	columns := make([][]string, join.ColumnCount)
	for i := range columns {
		columns[i] = make([]string, 0, len(rows))
	}
	for _, row := range rows {
		cells := row.Cells()
		for i, cell := range cells {
			columns[i] = append(columns[i], cell)
		}
	}

	var errs []error
	for i, letter := range columnLetters {
		rangeA1 := fmt.Sprintf("%s!%s2:%s%d", tab, letter, letter, len(rows)+1)
		if err := p.api.UpdateColumn(ctx, spreadsheetID, rangeA1, columns[i]); err != nil {
			p.log.Errorf("[ERROR] failed to write range %s (%s): %v", rangeA1, join.ColumnHeaders[i], err)
			errs = append(errs, fmt.Errorf("range %s: %w", rangeA1, err))
			continue
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("published %d/%d ranges: %w", join.ColumnCount-len(errs), join.ColumnCount, errors.Join(errs...))
	}

	p.log.Infof("published %d rows to %s tab %s", len(rows), spreadsheetID, tab)
	return nil
}
