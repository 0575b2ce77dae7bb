// Package jptime converts epoch timestamps from the source systems into the
// fixed UTC+9 civil time used for all day-boundary and display logic.
package jptime

import (
	"fmt"
	"time"
)

// JST is the fixed UTC+9 offset. All civil-day matching happens in this zone,
// not in the storage system's calendar.
var JST = time.FixedZone("JST", 9*60*60)

// Layout is the civil string format written to snapshots and spreadsheets.
const Layout = "2006-01-02 15:04:05"

// FromEpoch converts an optional epoch-seconds value to JST. Nil in, nil out.
func FromEpoch(epoch *int64) *time.Time {
	if epoch == nil {
		return nil
	}
	t := time.Unix(*epoch, 0).In(JST)
	return &t
}

// Format renders a JST instant as "YYYY-MM-DD HH:MM:SS". Nil renders as the
// empty string so absent lifecycle stages become empty cells downstream.
func Format(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(JST).Format(Layout)
}

// Parse reads a civil string produced by Format back into a JST instant.
func Parse(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(Layout, s, JST)
	if err != nil {
		return nil, fmt.Errorf("parse civil time %q: %w", s, err)
	}
	return &t, nil
}
