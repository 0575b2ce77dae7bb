package sheets

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Tab names inside the configuration spreadsheet. Row 1 of each is a header.
const (
	templatesTab = "templates"
	sheetsTab    = "sheets"
)

// Template bucket keys. Months with at most 30 days use the 30-day layout.
const (
	Template30Days = "30_days"
	Template31Days = "31_days"
)

// Mapping is the persisted provisioning state: template spreadsheet ids by
// bucket, plus the append-only month_key -> spreadsheet id log.
type Mapping struct {
	Templates map[string]string
	Sheets    map[string]string
}

// ConfigStore reads and appends the provisioning mapping kept in the
// configuration spreadsheet.
type ConfigStore struct {
	api           API
	spreadsheetID string
	log           *logrus.Logger
}

// NewConfigStore returns a store bound to the configuration spreadsheet.
func NewConfigStore(api API, spreadsheetID string, log *logrus.Logger) *ConfigStore {
	return &ConfigStore{
		api:           api,
		spreadsheetID: spreadsheetID,
		log:           log,
	}
}

// Load scans both tables in full. A read failure is logged and yields an
// empty mapping so provisioning can fall back instead of aborting.
func (s *ConfigStore) Load(ctx context.Context) Mapping {
	m := Mapping{
		Templates: map[string]string{},
		Sheets:    map[string]string{},
	}

	templates, err := s.api.ReadTable(ctx, s.spreadsheetID, templatesTab)
	if err != nil {
		s.log.Warnf("[WARNING] failed to load %s table: %v", templatesTab, err)
		return m
	}
	for _, row := range dropHeader(templates) {
		if len(row) >= 2 {
			m.Templates[row[0]] = row[1]
		}
	}

	sheets, err := s.api.ReadTable(ctx, s.spreadsheetID, sheetsTab)
	if err != nil {
		s.log.Warnf("[WARNING] failed to load %s table: %v", sheetsTab, err)
		return m
	}
	for _, row := range dropHeader(sheets) {
		if len(row) >= 2 {
			m.Sheets[row[0]] = row[1]
		}
	}

	return m
}

// Append records a new (month_key, spreadsheet id) pair. The sheets table is
// append-only: existing mappings are never updated or deleted.
func (s *ConfigStore) Append(ctx context.Context, monthKey, spreadsheetID string) error {
	if err := s.api.AppendRow(ctx, s.spreadsheetID, sheetsTab, []string{monthKey, spreadsheetID}); err != nil {
		return fmt.Errorf("append mapping %s: %w", monthKey, err)
	}
	s.log.Infof("saved mapping: %s -> %s", monthKey, spreadsheetID)
	return nil
}

func dropHeader(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}
