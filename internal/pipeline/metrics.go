package pipeline

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/automail/analytics-pipeline/internal/awsclient"
	"github.com/automail/analytics-pipeline/internal/jptime"
)

// Reporter publishes per-day pipeline metrics to CloudWatch.
type Reporter struct {
	client    awsclient.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewReporter returns a Reporter for the given namespace.
func NewReporter(client awsclient.CloudWatchAPI, namespace string) *Reporter {
	if namespace == "" {
		namespace = "AutomailAnalytics"
	}
	return &Reporter{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// DayStats summarizes one day's run for observability.
type DayStats struct {
	Fetched    int
	Selected   int
	Aggregated int
	Success    bool
	Duration   time.Duration
}

// ReportDay publishes the day's counters. Failures here are the caller's to
// log; metrics must never fail the pipeline.
func (r *Reporter) ReportDay(ctx context.Context, day jptime.CivilDate, stats DayStats) error {
	now := r.nowFunc()
	dims := []cwtypes.Dimension{
		{Name: sdkaws.String("Day"), Value: sdkaws.String(day.String())},
	}
	outcome := 0.0
	if stats.Success {
		outcome = 1.0
	}

	datum := func(name string, value float64, unit cwtypes.StandardUnit) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: sdkaws.String(name),
			Value:      sdkaws.Float64(value),
			Unit:       unit,
			Timestamp:  sdkaws.Time(now),
			Dimensions: dims,
		}
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{
			datum("RequestsFetched", float64(stats.Fetched), cwtypes.StandardUnitCount),
			datum("RequestsSelected", float64(stats.Selected), cwtypes.StandardUnitCount),
			datum("RowsAggregated", float64(stats.Aggregated), cwtypes.StandardUnitCount),
			datum("DaySucceeded", outcome, cwtypes.StandardUnitCount),
			datum("DayDuration", stats.Duration.Seconds(), cwtypes.StandardUnitSeconds),
		},
	}

	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
