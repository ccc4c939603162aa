package dataset

import (
	"fmt"
	"maps"
	"slices"

	"github.com/xuri/excelize/v2"

	"voc-insights-go/internal/aggregator"
	"voc-insights-go/internal/types"
)

const (
	OutcomesSheet = "outcomes"
	SummarySheet  = "summary"
)

var outcomeHeader = []any{
	"output_key", "status", "error_code", "retryable", "execution_id",
	"guid", "agent", "customer_id", "conversation_time", "call_nature", "summary", "duration_ms",
}

// WriteReport writes a backfill report with one row per outcome and the
// aggregated summary on a second sheet.
func WriteReport(path string, outcomes []types.Outcome, s aggregator.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), OutcomesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(OutcomesSheet, "A1", &outcomeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, o := range outcomes {
		status := "ok"
		if !o.Succeeded() {
			status = "failed"
		}
		row := []any{o.OutputKey, status, o.ErrorCode, o.Retryable, o.ExecutionID}
		if r := o.Record; r != nil {
			row = append(row, r.GUID, r.Agent, r.CustomerID, r.ConversationTime, r.CallNature, r.Summary)
		} else {
			row = append(row, "", "", "", "", "", o.Error)
		}
		row = append(row, o.DurationMs)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(OutcomesSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	lines := [][]any{
		{"total", s.Total},
		{"succeeded", s.Succeeded},
		{"failed", s.Failed},
		{"retryable", s.Retryable},
		{"success_rate", s.SuccessRate},
		{"avg_conversation_secs", s.AvgConversationSecs},
	}
	lines = appendCounts(lines, "error_code", s.ByErrorCode)
	lines = appendCounts(lines, "call_nature", s.ByCallNature)
	lines = appendCounts(lines, "agent", s.ByAgent)
	for i, c := range s.TopCategories {
		lines = append(lines, []any{fmt.Sprintf("top_category_%d", i+1), c})
	}
	for i, l := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &l); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func appendCounts(lines [][]any, prefix string, m map[string]int) [][]any {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		lines = append(lines, []any{prefix + ":" + k, m[k]})
	}
	return lines
}
