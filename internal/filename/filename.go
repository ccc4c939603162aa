// Package filename extracts call identity from transcript object names and
// normalizes the filename-safe timestamp they carry.
package filename

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/types"
)

const stage = "filename"

// Pattern is the wire format of transcript object names:
// CUST_<id>_GUID_<guid>_AGENT_<agent>_DT_<YYYY-MM-DDTHH-MM-SS>_<remark>.wav.json
// Word groups accept any Unicode letter or digit, so Chinese agent names and
// remarks parse.
var Pattern = regexp.MustCompile(`^CUST_(?P<cust>[\p{L}\p{N}_]+)_GUID_(?P<guid>[\p{L}\p{N}_]+)_AGENT_(?P<agent>[\p{L}\p{N}_]+)_DT_(?P<ts>[\d-]+T[\d-]+)_(?P<remark>[\p{L}\p{N}_]+)\.wav\.json$`)

// Parse extracts the identity groups from name. Only the base name is
// matched, so a full storage key may be passed.
func Parse(name string) (types.FilenameInfo, error) {
	base := path.Base(name)
	m := Pattern.FindStringSubmatch(base)
	if m == nil {
		return types.FilenameInfo{}, vocerr.New(vocerr.ErrParse, stage, "filename %s does not match the expected pattern", base)
	}
	group := func(n string) string { return m[Pattern.SubexpIndex(n)] }
	return types.FilenameInfo{
		CustomerID:       group("cust"),
		ConversationGUID: group("guid"),
		Agent:            group("agent"),
		TimestampToken:   group("ts"),
		Remark:           group("remark"),
		Filename:         base,
	}, nil
}

// NormalizeTimestamp turns YYYY-MM-DDTHH-MM-SS into YYYY-MM-DD HH:MM:SS.
// Only the time segment's hyphens become colons; values are not range
// checked.
func NormalizeTimestamp(token string) (string, error) {
	date, clock, ok := strings.Cut(token, "T")
	if !ok || date == "" || strings.Contains(clock, "T") {
		return "", vocerr.New(vocerr.ErrParse, stage, "timestamp %q has no single T separator", token)
	}
	parts := strings.Split(clock, "-")
	if len(parts) != 3 {
		return "", vocerr.New(vocerr.ErrParse, stage, "timestamp %q time segment is not HH-MM-SS", token)
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, ": ") {
			return "", vocerr.New(vocerr.ErrParse, stage, "timestamp %q time segment is not HH-MM-SS", token)
		}
	}
	return date + " " + strings.Join(parts, ":"), nil
}

// FormatProcessTime renders t as a canonical timestamp, keeping microseconds
// when present.
func FormatProcessTime(t time.Time) string {
	s, err := NormalizeTimestamp(t.Format("2006-01-02T15-04-05"))
	if err != nil {
		// the layout above always yields a valid token
		panic(err)
	}
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}
