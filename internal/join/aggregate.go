// Package join implements the event-join and multi-event aggregation core:
// it matches delivery-event records to a day's request set by request id and
// widens each request with one first-occurrence column per event type.
package join

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/events"
	"github.com/automail/analytics-pipeline/internal/jptime"
	"github.com/automail/analytics-pipeline/internal/request"
)

// AggregatedRow is one denormalized output record, one per request. Nil
// fields serialize as empty cells.
type AggregatedRow struct {
	RequestID      string
	EmailStatus    *string // request_status from the source record
	SentAt         *time.Time
	Answer         *string
	AnsweredAt     *time.Time // submitted_at from the source record
	SMSStatus      *string
	TotalPrice     *float64
	SGTemplateName *string
	ProcessedAt    *time.Time
	DroppedAt      *time.Time
	DeferredAt     *time.Time
	BounceAt       *time.Time
	DeliveredAt    *time.Time
	OpenAt         *time.Time
	ClickAt        *time.Time
	SpamReportAt   *time.Time
	CancelReason   *string
}

// Engine joins a request set against an event relation.
type Engine struct {
	log *logrus.Logger
}

// NewEngine returns an Engine.
func NewEngine(log *logrus.Logger) *Engine {
	return &Engine{log: log}
}

// Aggregate produces one AggregatedRow per request, in input order. For each
// of the fixed event types, the request's column holds the JST-converted
// timestamp of the first event seen in relation order, or nil when the
// request has no such event. The processed event additionally contributes
// sg_template_name under the same first-occurrence policy. Orphan events
// (request ids outside the request set) are never looked up. An empty
// relation degrades every event column to nil without failing.
func (e *Engine) Aggregate(requests []request.Normalized, rel events.Relation) []AggregatedRow {
	for _, src := range rel.SkippedSources {
		e.log.Warnf("[WARNING] event source unavailable, its columns degrade to empty: %s", src)
	}

	firstSeen := make(map[string]map[string]int64, len(events.Types))
	for _, typ := range events.Types {
		firstSeen[typ] = firstTimestampByRequest(rel.Events, typ)
	}
	templates := firstTemplateByRequest(rel.Events)

	rows := make([]AggregatedRow, 0, len(requests))
	for _, req := range requests {
		row := AggregatedRow{
			RequestID:    req.RequestID,
			EmailStatus:  req.RequestStatus,
			SentAt:       req.SentAtJP,
			Answer:       req.Answer,
			AnsweredAt:   req.SubmittedAtJP,
			SMSStatus:    req.SMSStatus,
			TotalPrice:   req.TotalPrice,
			CancelReason: req.ReasonCancel,
		}
		row.ProcessedAt = lookupJP(firstSeen[events.TypeProcessed], req.RequestID)
		row.DroppedAt = lookupJP(firstSeen[events.TypeDropped], req.RequestID)
		row.DeferredAt = lookupJP(firstSeen[events.TypeDeferred], req.RequestID)
		row.BounceAt = lookupJP(firstSeen[events.TypeBounce], req.RequestID)
		row.DeliveredAt = lookupJP(firstSeen[events.TypeDelivered], req.RequestID)
		row.OpenAt = lookupJP(firstSeen[events.TypeOpen], req.RequestID)
		row.ClickAt = lookupJP(firstSeen[events.TypeClick], req.RequestID)
		row.SpamReportAt = lookupJP(firstSeen[events.TypeSpamReport], req.RequestID)
		if tmpl, ok := templates[req.RequestID]; ok {
			row.SGTemplateName = &tmpl
		}
		rows = append(rows, row)
	}
	return rows
}

// firstTimestampByRequest indexes request_id -> timestamp for one event type,
// keeping only the first occurrence in relation order. First write wins;
// later duplicates are discarded, not merged.
func firstTimestampByRequest(evs []events.Event, eventType string) map[string]int64 {
	idx := make(map[string]int64)
	for _, ev := range evs {
		if ev.Event != eventType {
			continue
		}
		if _, seen := idx[ev.RequestID]; seen {
			continue
		}
		idx[ev.RequestID] = ev.Timestamp
	}
	return idx
}

// firstTemplateByRequest indexes request_id -> sg_template_name from
// processed events, same first-occurrence policy. Processed events without a
// template name still claim the first slot.
func firstTemplateByRequest(evs []events.Event) map[string]string {
	idx := make(map[string]string)
	for _, ev := range evs {
		if ev.Event != events.TypeProcessed {
			continue
		}
		if _, seen := idx[ev.RequestID]; seen {
			continue
		}
		tmpl := ""
		if ev.SGTemplateName != nil {
			tmpl = *ev.SGTemplateName
		}
		idx[ev.RequestID] = tmpl
	}
	return idx
}

func lookupJP(idx map[string]int64, requestID string) *time.Time {
	ts, ok := idx[requestID]
	if !ok {
		return nil
	}
	return jptime.FromEpoch(&ts)
}
