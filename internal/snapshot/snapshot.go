// Package snapshot reads and writes the day-scoped CSV files kept as
// inspectable intermediate state between pipeline stages. Every file is
// overwritten wholesale on each run; a missing or empty file degrades to an
// empty record set instead of failing the run.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/jptime"
	"github.com/automail/analytics-pipeline/internal/join"
	"github.com/automail/analytics-pipeline/internal/request"
)

var rawHeader = []string{
	"request_id",
	"created_at",
	"expired_at",
	"flow_assessment_at",
	"processing_at",
	"sent_at",
	"updated_at",
	"submitted_at",
	"answer",
	"sms_status",
	"request_status",
	"total_price",
	"reason_cancel",
}

var normalizedHeader = append(append([]string{}, rawHeader...),
	"created_at_jp",
	"expired_at_jp",
	"flow_assessment_at_jp",
	"processing_at_jp",
	"sent_at_jp",
	"updated_at_jp",
	"submitted_at_jp",
)

// WriteRaw writes the records exactly as fetched from the store.
func WriteRaw(path string, recs []request.Record) error {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rawCells(rec))
	}
	return writeCSV(path, rawHeader, rows)
}

// WriteNormalized writes the time-normalized, day-filtered records.
func WriteNormalized(path string, recs []request.Normalized) error {
	rows := make([][]string, 0, len(recs))
	for _, n := range recs {
		row := rawCells(n.Record)
		row = append(row,
			jptime.Format(n.CreatedAtJP),
			jptime.Format(n.ExpiredAtJP),
			jptime.Format(n.FlowAssessmentAtJP),
			jptime.Format(n.ProcessingAtJP),
			jptime.Format(n.SentAtJP),
			jptime.Format(n.UpdatedAtJP),
			jptime.Format(n.SubmittedAtJP),
		)
		rows = append(rows, row)
	}
	return writeCSV(path, normalizedHeader, rows)
}

// WriteAggregated writes the final joined rows in publish column order.
func WriteAggregated(path string, rows []join.AggregatedRow) error {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		rc := r.Cells()
		cells = append(cells, rc[:])
	}
	return writeCSV(path, join.ColumnHeaders[:], cells)
}

// ReadNormalized loads the normalized snapshot back as the join input. A
// missing or empty file is logged and yields an empty set; individual
// unparseable fields degrade to absent rather than failing the read.
func ReadNormalized(path string, log *logrus.Logger) []request.Normalized {
	f, err := os.Open(path)
	if err != nil {
		log.Warnf("[WARNING] failed to read %s: %v", path, err)
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err != io.EOF {
			log.Warnf("[WARNING] failed to read header of %s: %v", path, err)
		}
		return nil
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	var out []request.Normalized
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warnf("[WARNING] skipping malformed row in %s: %v", path, err)
			continue
		}
		out = append(out, normalizedFromRow(row, col, log))
	}
	return out
}

func normalizedFromRow(row []string, col map[string]int, log *logrus.Logger) request.Normalized {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	optString := func(name string) *string {
		if v := field(name); v != "" {
			return &v
		}
		return nil
	}
	optEpoch := func(name string) *int64 {
		v := field(name)
		if v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		return &n
	}
	optJP := func(name string) *time.Time {
		t, err := jptime.Parse(field(name))
		if err != nil {
			log.Warnf("[WARNING] bad civil time in column %s: %v", name, err)
			return nil
		}
		return t
	}

	n := request.Normalized{
		Record: request.Record{
			RequestID:        field("request_id"),
			CreatedAt:        optEpoch("created_at"),
			ExpiredAt:        optEpoch("expired_at"),
			FlowAssessmentAt: optEpoch("flow_assessment_at"),
			ProcessingAt:     optEpoch("processing_at"),
			SentAt:           optEpoch("sent_at"),
			UpdatedAt:        optEpoch("updated_at"),
			SubmittedAt:      optEpoch("submitted_at"),
			Answer:           optString("answer"),
			SMSStatus:        optString("sms_status"),
			RequestStatus:    optString("request_status"),
			ReasonCancel:     optString("reason_cancel"),
		},
		CreatedAtJP:        optJP("created_at_jp"),
		ExpiredAtJP:        optJP("expired_at_jp"),
		FlowAssessmentAtJP: optJP("flow_assessment_at_jp"),
		ProcessingAtJP:     optJP("processing_at_jp"),
		SentAtJP:           optJP("sent_at_jp"),
		UpdatedAtJP:        optJP("updated_at_jp"),
		SubmittedAtJP:      optJP("submitted_at_jp"),
	}
	if v := field("total_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			n.TotalPrice = &p
		}
	}
	return n
}

func rawCells(rec request.Record) []string {
	return []string{
		rec.RequestID,
		epochString(rec.CreatedAt),
		epochString(rec.ExpiredAt),
		epochString(rec.FlowAssessmentAt),
		epochString(rec.ProcessingAt),
		epochString(rec.SentAt),
		epochString(rec.UpdatedAt),
		epochString(rec.SubmittedAt),
		stringOrEmpty(rec.Answer),
		stringOrEmpty(rec.SMSStatus),
		stringOrEmpty(rec.RequestStatus),
		priceString(rec.TotalPrice),
		stringOrEmpty(rec.ReasonCancel),
	}
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func epochString(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func priceString(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
