package query

import (
	"regexp"
	"strconv"
	"strings"

	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/types"
)

const stage = "query"

var (
	identPattern  = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
)

// Builder renders records against a Schema. It is pure and safe for
// concurrent use.
type Builder struct {
	Schema Schema
}

func NewBuilder() *Builder {
	return &Builder{Schema: ProcessedTranscriptionV1}
}

// Build returns a single-row INSERT for rec into database.table. Free text
// is quoted with embedded quotes doubled, so no value can end its literal.
func (b *Builder) Build(rec *types.ExtractedRecord, database, table string) (string, error) {
	if rec == nil {
		return "", vocerr.New(vocerr.ErrInvalidRecord, stage, "record is nil")
	}
	for _, id := range []string{database, table} {
		if !identPattern.MatchString(id) {
			return "", vocerr.New(vocerr.ErrInvalidRecord, stage, "invalid identifier %q", id)
		}
	}

	values := make([]string, len(b.Schema.Columns))
	for i, col := range b.Schema.Columns {
		v, err := encode(col, col.Value(rec))
		if err != nil {
			return "", err
		}
		values[i] = v
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(database)
	sb.WriteByte('.')
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(b.Schema.Names(), ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(values, ", "))
	sb.WriteByte(')')
	return sb.String(), nil
}

func encode(col Column, v any) (string, error) {
	invalid := func(format string, args ...any) error {
		return vocerr.New(vocerr.ErrInvalidRecord, stage, col.Name+": "+format, args...)
	}

	switch col.Type {
	case TypeString, TypeTimestamp, TypeInt:
		s, ok := v.(string)
		if !ok {
			return "", invalid("expected string value, got %T", v)
		}
		if col.Required && s == "" {
			return "", invalid("required value is empty")
		}
		switch col.Type {
		case TypeTimestamp:
			return "TIMESTAMP " + Quote(s), nil
		case TypeInt:
			if !digitsPattern.MatchString(s) {
				return "", invalid("%q is not an integer", s)
			}
			return s, nil
		}
		return Quote(s), nil

	case TypeDouble:
		f, ok := v.(float64)
		if !ok {
			return "", invalid("expected float64 value, got %T", v)
		}
		return FormatDouble(f), nil

	case TypeStringArray:
		l, ok := v.([]string)
		if !ok {
			return "", invalid("expected string list, got %T", v)
		}
		return StringArray(l), nil

	case TypeSegmentArray:
		segs, ok := v.([]types.Segment)
		if !ok {
			return "", invalid("expected segments, got %T", v)
		}
		return SegmentArray(segs), nil
	}
	return "", invalid("unsupported column type %s", col.Type)
}

// Quote renders s as a string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// FormatDouble renders f in its shortest exact form: 13, -0.2264921152376914.
func FormatDouble(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StringArray renders ARRAY['a','b']; an empty list is ARRAY[].
func StringArray(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	return "ARRAY[" + strings.Join(quoted, ",") + "]"
}

// SegmentArray renders one ROW per segment, fields in struct order.
func SegmentArray(segs []types.Segment) string {
	rows := make([]string, len(segs))
	for i, s := range segs {
		rows[i] = segmentRow(s)
	}
	return "ARRAY[" + strings.Join(rows, ", ") + "]"
}

func segmentRow(s types.Segment) string {
	tokens := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		tokens[i] = strconv.FormatInt(t, 10)
	}
	fields := []string{
		strconv.Itoa(s.ID),
		strconv.Itoa(s.Seek),
		FormatDouble(s.Start),
		FormatDouble(s.End),
		Quote(s.Text),
		"ARRAY[" + strings.Join(tokens, ", ") + "]",
		FormatDouble(s.Temperature),
		FormatDouble(s.AvgLogProb),
		FormatDouble(s.CompressionRatio),
		FormatDouble(s.NoSpeechProb),
		StringArray(s.Words),
	}
	return "ROW(" + strings.Join(fields, ", ") + ")"
}
