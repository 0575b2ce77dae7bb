package join

import (
	"strconv"

	"github.com/automail/analytics-pipeline/internal/jptime"
)

// ColumnCount is the fixed width of the published output (columns A..Q).
const ColumnCount = 17

// ColumnHeaders lists the output columns in spreadsheet order.
var ColumnHeaders = [ColumnCount]string{
	"request_id",
	"lambda_email_status",
	"lambda_sent_at",
	"answer",
	"answered_at",
	"lambda_sms_status",
	"total_price",
	"sg_template_name",
	"processed_at",
	"dropped_at",
	"deferred_at",
	"bounce_at",
	"delivered_at",
	"open_at",
	"click_at",
	"spamreport_at",
	"cancel_reason",
}

// Cells serializes the row in column order. Nil values become empty strings,
// never the literal "null".
func (r AggregatedRow) Cells() [ColumnCount]string {
	return [ColumnCount]string{
		r.RequestID,
		deref(r.EmailStatus),
		jptime.Format(r.SentAt),
		deref(r.Answer),
		jptime.Format(r.AnsweredAt),
		deref(r.SMSStatus),
		formatPrice(r.TotalPrice),
		deref(r.SGTemplateName),
		jptime.Format(r.ProcessedAt),
		jptime.Format(r.DroppedAt),
		jptime.Format(r.DeferredAt),
		jptime.Format(r.BounceAt),
		jptime.Format(r.DeliveredAt),
		jptime.Format(r.OpenAt),
		jptime.Format(r.ClickAt),
		jptime.Format(r.SpamReportAt),
		deref(r.CancelReason),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
