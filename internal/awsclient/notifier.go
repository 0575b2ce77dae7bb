package awsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Notifier wraps an SQS client and a queue URL. After a day's reconciliation
// publishes, a small JSON message lets downstream consumers react without
// polling the spreadsheet.
type Notifier struct {
	SQS      SQSAPI
	QueueURL string
}

// NewNotifier returns a Notifier bound to a queue URL.
func NewNotifier(sqsClient SQSAPI, queueURL string) *Notifier {
	return &Notifier{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// DayCompletedMessage is the payload sent when a day's pipeline finishes.
type DayCompletedMessage struct {
	Day           string `json:"day"` // YYYY-MM-DD
	SpreadsheetID string `json:"spreadsheet_id"`
	Rows          int    `json:"rows"`
	RunID         string `json:"run_id,omitempty"`
	CompletedAt   string `json:"completed_at"`
}

// NotifyDayCompleted sends the completion message with a string attribute per
// entry of attributes.
func (n *Notifier) NotifyDayCompleted(ctx context.Context, msg DayCompletedMessage, attributes map[string]string) error {
	if msg.CompletedAt == "" {
		msg.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal completion message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    &n.QueueURL,
		MessageBody: awsString(string(body)),
	}
	if len(attributes) > 0 {
		msgAttrs := map[string]sqstypes.MessageAttributeValue{}
		for k, v := range attributes {
			// using string type for all attrs
			msgAttrs[k] = sqstypes.MessageAttributeValue{
				DataType:    awsString("String"),
				StringValue: &v,
			}
		}
		input.MessageAttributes = msgAttrs
	}

	_, err = n.SQS.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// awsString helper
func awsString(s string) *string { return &s }
