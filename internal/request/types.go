package request

import (
	"time"

	"github.com/automail/analytics-pipeline/internal/jptime"
)

// AnswerSentinel is what the source system stores when a request was never
// answered. Normalization rewrites it to absent.
const AnswerSentinel = "no_answer"

// Record is one outbound communication attempt as stored in the requests
// DynamoDB table. A nil timestamp means the corresponding lifecycle stage
// never occurred.
type Record struct {
	RequestID        string   `dynamodbav:"request_id"` // PK
	CreatedAt        *int64   `dynamodbav:"created_at,omitempty"`
	ExpiredAt        *int64   `dynamodbav:"expired_at,omitempty"`
	FlowAssessmentAt *int64   `dynamodbav:"flow_assessment_at,omitempty"`
	ProcessingAt     *int64   `dynamodbav:"processing_at,omitempty"`
	SentAt           *int64   `dynamodbav:"sent_at,omitempty"`
	UpdatedAt        *int64   `dynamodbav:"updated_at,omitempty"`
	SubmittedAt      *int64   `dynamodbav:"submitted_at,omitempty"`
	Answer           *string  `dynamodbav:"answer,omitempty"`
	SMSStatus        *string  `dynamodbav:"sms_status,omitempty"`
	RequestStatus    *string  `dynamodbav:"request_status,omitempty"`
	TotalPrice       *float64 `dynamodbav:"total_price,omitempty"`
	ReasonCancel     *string  `dynamodbav:"reason_cancel,omitempty"`
}

// Normalized is a Record widened with the UTC+9 view of every timestamp and
// the answer sentinel rewritten to absent.
type Normalized struct {
	Record

	CreatedAtJP        *time.Time
	ExpiredAtJP        *time.Time
	FlowAssessmentAtJP *time.Time
	ProcessingAtJP     *time.Time
	SentAtJP           *time.Time
	UpdatedAtJP        *time.Time
	SubmittedAtJP      *time.Time
}

// Normalize converts every epoch field to JST and drops the "no answer"
// sentinel. The input record is not mutated.
func Normalize(rec Record) Normalized {
	n := Normalized{
		Record:             rec,
		CreatedAtJP:        jptime.FromEpoch(rec.CreatedAt),
		ExpiredAtJP:        jptime.FromEpoch(rec.ExpiredAt),
		FlowAssessmentAtJP: jptime.FromEpoch(rec.FlowAssessmentAt),
		ProcessingAtJP:     jptime.FromEpoch(rec.ProcessingAt),
		SentAtJP:           jptime.FromEpoch(rec.SentAt),
		UpdatedAtJP:        jptime.FromEpoch(rec.UpdatedAt),
		SubmittedAtJP:      jptime.FromEpoch(rec.SubmittedAt),
	}
	if rec.Answer != nil && *rec.Answer == AnswerSentinel {
		n.Answer = nil
	}
	return n
}

// NormalizeAll normalizes a batch, keeping only records created on the target
// civil day. Input iteration order is preserved.
func NormalizeAll(recs []Record, day jptime.CivilDate) []Normalized {
	out := make([]Normalized, 0, len(recs))
	for _, rec := range recs {
		n := Normalize(rec)
		if day.Contains(n.CreatedAtJP) {
			out = append(out, n)
		}
	}
	return out
}

// SelectForAssessmentDay keeps requests whose flow assessment happened on the
// target civil day. These are the rows that enter the aggregation.
func SelectForAssessmentDay(recs []Normalized, day jptime.CivilDate) []Normalized {
	out := make([]Normalized, 0, len(recs))
	for _, n := range recs {
		if day.Contains(n.FlowAssessmentAtJP) {
			out = append(out, n)
		}
	}
	return out
}
