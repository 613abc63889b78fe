// Package source turns listing API records into sorted price samples.
package source

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/utils"
)

// DefaultFields project the offer records served by the listings API.
var DefaultFields = models.FieldPaths{
	Timestamp: "$.last_refresh_time",
	Value:     "$.value",
	Label:     "$.title",
}

// WithDefaults fills empty paths from DefaultFields.
func WithDefaults(f models.FieldPaths) models.FieldPaths {
	if utils.IsEmptyOrWhitespace(f.Timestamp) {
		f.Timestamp = DefaultFields.Timestamp
	}
	if utils.IsEmptyOrWhitespace(f.Value) {
		f.Value = DefaultFields.Value
	}
	if utils.IsEmptyOrWhitespace(f.Label) {
		f.Label = DefaultFields.Label
	}
	return f
}

type projection struct {
	timestamp jp.Expr
	value     jp.Expr
	label     jp.Expr
}

var (
	projMu    sync.Mutex
	projCache = map[models.FieldPaths]projection{}
)

// compile parses the JSONPath expressions once per distinct set of paths.
func compile(fields models.FieldPaths) (projection, error) {
	fields = WithDefaults(fields)

	projMu.Lock()
	defer projMu.Unlock()
	if p, ok := projCache[fields]; ok {
		return p, nil
	}

	var (
		p   projection
		err error
	)
	if p.timestamp, err = jp.ParseString(fields.Timestamp); err != nil {
		return p, fmt.Errorf("timestamp path %q: %w", fields.Timestamp, err)
	}
	if p.value, err = jp.ParseString(fields.Value); err != nil {
		return p, fmt.Errorf("value path %q: %w", fields.Value, err)
	}
	if p.label, err = jp.ParseString(fields.Label); err != nil {
		return p, fmt.Errorf("label path %q: %w", fields.Label, err)
	}
	projCache[fields] = p
	return p, nil
}

// ValidateFields reports whether every path parses as JSONPath.
func ValidateFields(fields models.FieldPaths) error {
	if _, err := compile(fields); err != nil {
		return utils.NewConfigError("field_paths", "invalid field path", err)
	}
	return nil
}

// Decode parses a JSON document into generic records. Anything other than
// a JSON array yields an empty list.
func Decode(body []byte) []any {
	doc, err := oj.Parse(body)
	if err != nil {
		utils.LogDebugWithContext("source", "response is not valid JSON", err)
		return []any{}
	}
	records, ok := doc.([]any)
	if !ok {
		return []any{}
	}
	return records
}

// Normalize projects records into samples sorted by timestamp. Records
// without a finite numeric value or a resolvable timestamp are skipped.
// Ties keep their input order.
func Normalize(records []any, fields models.FieldPaths) []models.Sample {
	p, err := compile(fields)
	if err != nil {
		utils.LogWarnWithContext("source", "falling back to default field paths", err)
		p, _ = compile(DefaultFields)
	}

	samples := make([]models.Sample, 0, len(records))
	for _, rec := range records {
		v, ok := numeric(p.value.First(rec))
		if !ok {
			continue
		}
		ts, ok := timestamp(p.timestamp.First(rec))
		if !ok {
			continue
		}
		samples = append(samples, models.Sample{
			Timestamp: ts,
			Value:     v,
			Label:     text(p.label.First(rec)),
		})
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp < samples[j].Timestamp
	})
	return samples
}

// numeric accepts JSON numbers only; numeric strings are not values.
func numeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// timestamp accepts epoch milliseconds or a date string.
func timestamp(v any) (int64, bool) {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil {
			return ms, true
		}
		parsed, err := utils.ParseTimestamp(t)
		if err != nil {
			return 0, false
		}
		return parsed.UnixMilli(), true
	default:
		f, ok := numeric(v)
		if !ok {
			return 0, false
		}
		return int64(f), true
	}
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
