package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ManifestEntry is one transcript listed in a backfill manifest.
type ManifestEntry struct {
	Row       int    `json:"row"`
	OutputKey string `json:"output_key"`
}

// LoadManifest reads transcript keys from the first sheet of an xlsx file.
// The key column is auto-detected by header heuristics; rows whose value is
// not a transcript key are skipped.
func LoadManifest(path string) ([]ManifestEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	keyIdx := -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		if strings.Contains(l, "key") || strings.Contains(l, "s3") || strings.Contains(l, "path") || strings.Contains(l, "transcript") {
			keyIdx = i
			break
		}
	}
	// fallback: first column
	if keyIdx == -1 {
		keyIdx = 0
	}

	var out []ManifestEntry
	for i, r := range rows {
		if i == 0 || keyIdx >= len(r) {
			continue
		}
		key := normalizeKey(r[keyIdx])
		if !strings.HasSuffix(key, ".wav.json") {
			continue
		}
		out = append(out, ManifestEntry{Row: i + 1, OutputKey: key})
	}
	return out, nil
}

// normalizeKey strips a s3://bucket/ prefix so full URIs and bare keys both
// work.
func normalizeKey(v string) string {
	v = strings.TrimSpace(v)
	if rest, ok := strings.CutPrefix(v, "s3://"); ok {
		if _, key, found := strings.Cut(rest, "/"); found {
			return key
		}
		return ""
	}
	return v
}
