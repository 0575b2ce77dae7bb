package events

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
)

// Materializer merges the downloaded parquet files of one day into a single
// Relation.
type Materializer struct {
	log *logrus.Logger
}

// NewMaterializer returns a Materializer.
func NewMaterializer(log *logrus.Logger) *Materializer {
	return &Materializer{log: log}
}

// MergeDir reads every *.parquet file under dir, in lexical file order, into
// one relation. A missing directory or an unreadable file is logged once and
// skipped; the remaining files still contribute, so one malformed source
// never disables lookups fed by the others.
func (m *Materializer) MergeDir(dir string) Relation {
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.log.Warnf("[WARNING] event directory not found: %s: %v", dir, err)
		return Relation{SkippedSources: []string{dir}}
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".parquet" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		m.log.Warnf("[WARNING] no parquet files found in: %s", dir)
		return Relation{}
	}

	var rel Relation
	for _, f := range files {
		rows, err := parquet.ReadFile[Event](f)
		if err != nil {
			m.log.Warnf("[WARNING] failed to read events file %s: %v", f, err)
			rel.SkippedSources = append(rel.SkippedSources, f)
			continue
		}
		rel.Events = append(rel.Events, rows...)
	}
	return rel
}

// WriteMergedCSV writes the relation to a day-scoped CSV snapshot,
// overwriting any prior content.
func WriteMergedCSV(rel Relation, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"request_id", "event", "timestamp", "sg_template_name"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, ev := range rel.Events {
		tmpl := ""
		if ev.SGTemplateName != nil {
			tmpl = *ev.SGTemplateName
		}
		row := []string{ev.RequestID, ev.Event, strconv.FormatInt(ev.Timestamp, 10), tmpl}
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
