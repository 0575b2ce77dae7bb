// Package events materializes the day-partitioned delivery event logs into
// one in-memory relation.
package events

// The fixed set of delivery-pipeline event types recorded by the log.
const (
	TypeProcessed  = "processed"
	TypeDropped    = "dropped"
	TypeDeferred   = "deferred"
	TypeBounce     = "bounce"
	TypeDelivered  = "delivered"
	TypeOpen       = "open"
	TypeClick      = "click"
	TypeSpamReport = "spamreport"
)

// Types lists every event type in output-column order.
var Types = []string{
	TypeProcessed,
	TypeDropped,
	TypeDeferred,
	TypeBounce,
	TypeDelivered,
	TypeOpen,
	TypeClick,
	TypeSpamReport,
}

// Event is one delivery-pipeline occurrence. RequestID is a soft foreign key:
// orphan events are possible and simply never get looked up.
type Event struct {
	RequestID      string  `parquet:"request_id"`
	Event          string  `parquet:"event"`
	Timestamp      int64   `parquet:"timestamp"`
	SGTemplateName *string `parquet:"sg_template_name,optional"` // processed events only
}

// Relation is the merged event set for one day, in source-file order.
// SkippedSources names files that could not be read; their events degraded to
// absent instead of failing the run.
type Relation struct {
	Events         []Event
	SkippedSources []string
}

// Empty reports whether the relation holds no events at all.
func (r Relation) Empty() bool {
	return len(r.Events) == 0
}
