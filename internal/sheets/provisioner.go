package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/jptime"
)

// ErrNoSpreadsheet means neither a template bucket nor a default spreadsheet
// id was configured, so provisioning cannot produce an id at all.
var ErrNoSpreadsheet = errors.New("no template and no default spreadsheet configured")

// Provisioner maps a (year, month) pair to a spreadsheet id, cloning the
// appropriate template on first use. Each month_key transitions from unmapped
// to mapped exactly once; reruns for a mapped month reuse the stored id.
//
// Concurrent invocations for the same unmapped month can race through the
// check-then-append sequence and create duplicate spreadsheets. The store has
// no compare-and-swap; a single scheduler is assumed.
type Provisioner struct {
	store          *ConfigStore
	api            API
	defaultSheetID string
	log            *logrus.Logger
}

// NewProvisioner returns a Provisioner. defaultSheetID is the fallback used
// when no template is configured for the required bucket; it may be empty.
func NewProvisioner(store *ConfigStore, api API, defaultSheetID string, log *logrus.Logger) *Provisioner {
	return &Provisioner{
		store:          store,
		api:            api,
		defaultSheetID: defaultSheetID,
		log:            log,
	}
}

// SpreadsheetName is the deterministic name of a month's cloned spreadsheet.
func SpreadsheetName(year, month int) string {
	return fmt.Sprintf("Automail %s", jptime.MonthKey(year, month))
}

// TemplateBucket selects the template key for a month by its day count.
func TemplateBucket(year, month int) string {
	if jptime.DaysInMonth(year, month) <= 30 {
		return Template30Days
	}
	return Template31Days
}

// GetOrCreate resolves the spreadsheet id for a month.
//
// An existing mapping is returned as-is. Otherwise the month's template is
// cloned, the new id appended to the sheets table, and returned. When the
// required template bucket is not configured, the globally configured default
// id is returned without persisting anything; that path is an escape hatch,
// not a provisioning transition. In dry-run mode the outcome is predicted and
// a synthetic placeholder id returned without contacting the clone API or
// persisting anything.
func (p *Provisioner) GetOrCreate(ctx context.Context, year, month int, dryRun bool) (string, error) {
	mapping := p.store.Load(ctx)
	key := jptime.MonthKey(year, month)

	if id, ok := mapping.Sheets[key]; ok {
		p.log.Infof("sheet for %s already exists: %s", key, id)
		return id, nil
	}

	bucket := TemplateBucket(year, month)
	templateID := mapping.Templates[bucket]
	name := SpreadsheetName(year, month)

	if templateID == "" {
		p.log.Warnf("[WARNING] no template id for bucket %s; check the %s table", bucket, templatesTab)
		if p.defaultSheetID == "" {
			return "", ErrNoSpreadsheet
		}
		return p.defaultSheetID, nil
	}

	if dryRun {
		p.log.Infof("[DRY-RUN] would clone template %s (%d days) as %q", templateID, jptime.DaysInMonth(year, month), name)
		return "dry-run-sheet-" + key, nil
	}

	p.log.Infof("creating new sheet for %s (%d days)...", key, jptime.DaysInMonth(year, month))
	newID, err := p.api.CopySpreadsheet(ctx, templateID, name)
	if err != nil {
		return "", fmt.Errorf("clone template %s: %w", templateID, err)
	}

	if err := p.store.Append(ctx, key, newID); err != nil {
		// The spreadsheet exists but the mapping write failed; a rerun will
		// clone again. Surface the error rather than hand out an unmapped id.
		return "", fmt.Errorf("persist mapping for %s: %w", key, err)
	}

	p.log.Infof("created new sheet: %s", newID)
	return newID, nil
}
