package snapshot

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automail/analytics-pipeline/internal/join"
	"github.com/automail/analytics-pipeline/internal/jptime"
	"github.com/automail/analytics-pipeline/internal/request"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func strPtr(s string) *string    { return &s }
func epochPtr(v int64) *int64    { return &v }
func pricePtr(v float64) *float64 { return &v }

func sampleNormalized() request.Normalized {
	return request.Normalize(request.Record{
		RequestID:        "r1",
		CreatedAt:        epochPtr(1768471200),
		FlowAssessmentAt: epochPtr(1768471260),
		SentAt:           epochPtr(1768471320),
		Answer:           strPtr("yes"),
		SMSStatus:        strPtr("delivered"),
		RequestStatus:    strPtr("sent"),
		TotalPrice:       pricePtr(10.5),
	})
}

func TestWriteReadNormalizedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "202601", "items_with_japan_time_20260115.csv")
	in := []request.Normalized{sampleNormalized()}

	require.NoError(t, WriteNormalized(path, in))
	out := ReadNormalized(path, testLogger())

	require.Len(t, out, 1)
	got := out[0]
	assert.Equal(t, "r1", got.RequestID)
	assert.Equal(t, int64(1768471200), *got.CreatedAt)
	assert.Equal(t, "yes", *got.Answer)
	assert.Equal(t, "delivered", *got.SMSStatus)
	assert.Equal(t, "sent", *got.RequestStatus)
	assert.Equal(t, 10.5, *got.TotalPrice)
	assert.Nil(t, got.ReasonCancel)
	assert.Equal(t, "2026-01-15 19:00:00", jptime.Format(got.CreatedAtJP))
	assert.Equal(t, "2026-01-15 19:01:00", jptime.Format(got.FlowAssessmentAtJP))
	assert.Equal(t, "2026-01-15 19:02:00", jptime.Format(got.SentAtJP))
	assert.Nil(t, got.ExpiredAtJP)
}

func TestReadNormalizedMissingFileDegrades(t *testing.T) {
	out := ReadNormalized(filepath.Join(t.TempDir(), "absent.csv"), testLogger())
	assert.Empty(t, out)
}

func TestReadNormalizedEmptyFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	out := ReadNormalized(path, testLogger())
	assert.Empty(t, out)
}

func TestWriteNormalizedOverwritesPriorContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, WriteNormalized(path, []request.Normalized{sampleNormalized(), sampleNormalized()}))
	require.NoError(t, WriteNormalized(path, []request.Normalized{sampleNormalized()}))

	out := ReadNormalized(path, testLogger())
	assert.Len(t, out, 1)
}

func TestWriteRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	recs := []request.Record{
		{RequestID: "r1", CreatedAt: epochPtr(100), Answer: strPtr("no_answer")},
		{RequestID: "r2"},
	}
	require.NoError(t, WriteRaw(path, recs))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "request_id", rows[0][0])
	// the raw snapshot keeps the sentinel; normalization happens later
	assert.Equal(t, "no_answer", rows[1][8])
	assert.Equal(t, "", rows[2][1])
}

func TestWriteAggregated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests_20260115.csv")
	rows := []join.AggregatedRow{
		{RequestID: "r1", EmailStatus: strPtr("sent")},
	}
	require.NoError(t, WriteAggregated(path, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, join.ColumnHeaders[:], got[0])
	assert.Equal(t, "r1", got[1][0])
	assert.Equal(t, "sent", got[1][1])
	assert.Equal(t, "", got[1][16])
}
