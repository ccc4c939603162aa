package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"voc-insights-go/internal/aggregator"
	"voc-insights-go/internal/types"
)

func writeManifest(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(t.TempDir(), "manifest.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, [][]any{
		{"batch", "S3 Key", "note"},
		{"1", "TranscribedOutput/CUST_00001_GUID_0000_AGENT_MelodyL_DT_2024-10-01T14-02-40_ChinaTelecomWong.wav.json", ""},
		{"1", "s3://voc-output/TranscribedOutput/CUST_00002_GUID_0001_AGENT_ChrisK_DT_2024-10-02T09-00-00_X.wav.json", ""},
		{"1", "TranscribedOutput/readme.txt", ""},
		{"2"},
	})

	entries, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Row)
	assert.Equal(t, "TranscribedOutput/CUST_00001_GUID_0000_AGENT_MelodyL_DT_2024-10-01T14-02-40_ChinaTelecomWong.wav.json", entries[0].OutputKey)
	assert.Equal(t, "TranscribedOutput/CUST_00002_GUID_0001_AGENT_ChrisK_DT_2024-10-02T09-00-00_X.wav.json", entries[1].OutputKey)
}

func TestLoadManifest_Errors(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)

	_, err = LoadManifest(writeManifest(t, [][]any{{"key"}}))
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	outcomes := []types.Outcome{
		{OutputKey: "a.wav.json", ExecutionID: "qe-1", Record: &types.ExtractedRecord{GUID: "0000", Agent: "MelodyL", CallNature: "帳户查詢"}},
		{OutputKey: "b.wav.json", ErrorCode: "parse_error", Error: "parse_error: filename: bad"},
	}
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReport(path, outcomes, aggregator.Aggregate(outcomes)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(OutcomesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "output_key", rows[0][0])
	assert.Equal(t, "a.wav.json", rows[1][0])
	assert.Equal(t, "ok", rows[1][1])
	assert.Equal(t, []string{"qe-1", "0000", "MelodyL"}, rows[1][4:7])
	assert.Equal(t, "failed", rows[2][1])
	assert.Equal(t, "parse_error", rows[2][2])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"total", "2"}, summary[0])
	assert.Contains(t, summary, []string{"error_code:parse_error", "1"})
	assert.Contains(t, summary, []string{"call_nature:帳户查詢", "1"})
}
