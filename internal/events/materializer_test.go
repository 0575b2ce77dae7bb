package events

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func strPtr(s string) *string { return &s }

func writeParquet(t *testing.T, path string, rows []Event) {
	t.Helper()
	require.NoError(t, parquet.WriteFile(path, rows))
}

func TestMergeDirMergesInLexicalFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "part-b.parquet"), []Event{
		{RequestID: "r2", Event: TypeDelivered, Timestamp: 200},
	})
	writeParquet(t, filepath.Join(dir, "part-a.parquet"), []Event{
		{RequestID: "r1", Event: TypeProcessed, Timestamp: 100, SGTemplateName: strPtr("tpl")},
	})

	rel := NewMaterializer(testLogger()).MergeDir(dir)

	require.Len(t, rel.Events, 2)
	assert.Equal(t, "r1", rel.Events[0].RequestID)
	assert.Equal(t, "r2", rel.Events[1].RequestID)
	assert.Empty(t, rel.SkippedSources)
}

func TestMergeDirMissingDirectory(t *testing.T) {
	rel := NewMaterializer(testLogger()).MergeDir(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, rel.Empty())
	assert.Len(t, rel.SkippedSources, 1)
}

func TestMergeDirEmptyDirectory(t *testing.T) {
	rel := NewMaterializer(testLogger()).MergeDir(t.TempDir())
	assert.True(t, rel.Empty())
	assert.Empty(t, rel.SkippedSources)
}

func TestMergeDirSkipsMalformedFileAndKeepsOthers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.parquet"), []byte("not parquet"), 0o644))
	writeParquet(t, filepath.Join(dir, "good.parquet"), []Event{
		{RequestID: "r1", Event: TypeOpen, Timestamp: 100},
	})

	rel := NewMaterializer(testLogger()).MergeDir(dir)

	require.Len(t, rel.Events, 1)
	assert.Equal(t, "r1", rel.Events[0].RequestID)
	require.Len(t, rel.SkippedSources, 1)
	assert.Contains(t, rel.SkippedSources[0], "broken.parquet")
}

func TestMergeDirIgnoresNonParquetFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_SUCCESS"), nil, 0o644))
	writeParquet(t, filepath.Join(dir, "good.parquet"), []Event{
		{RequestID: "r1", Event: TypeClick, Timestamp: 100},
	})

	rel := NewMaterializer(testLogger()).MergeDir(dir)
	require.Len(t, rel.Events, 1)
	assert.Empty(t, rel.SkippedSources)
}

func TestWriteMergedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events", "merged_events_20260115.csv")
	rel := Relation{Events: []Event{
		{RequestID: "r1", Event: TypeProcessed, Timestamp: 100, SGTemplateName: strPtr("tpl")},
		{RequestID: "r2", Event: TypeBounce, Timestamp: 200},
	}}

	require.NoError(t, WriteMergedCSV(rel, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"request_id", "event", "timestamp", "sg_template_name"}, rows[0])
	assert.Equal(t, []string{"r1", "processed", "100", "tpl"}, rows[1])
	assert.Equal(t, []string{"r2", "bounce", "200", ""}, rows[2])
}

func TestWriteMergedCSVEmptyRelation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.csv")
	require.NoError(t, WriteMergedCSV(Relation{}, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}
