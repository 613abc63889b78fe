package source

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"offer-tracker/internal/api/models"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"value": 1}, {"value": 2}]`, 2},
		{"empty array", `[]`, 0},
		{"object", `{"detail": "not found"}`, 0},
		{"garbage", `<html>`, 0},
		{"empty body", ``, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode([]byte(tt.body))
			if got == nil {
				t.Fatalf("Decode must never return nil")
			}
			if len(got) != tt.want {
				t.Errorf("expected %d records, got %d", tt.want, len(got))
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	body := `[
		{"last_refresh_time": "2024-01-02T10:00:00Z", "value": 1299, "title": "b"},
		{"last_refresh_time": "2024-01-02T09:00:00Z", "value": 49.99, "title": "a"},
		{"last_refresh_time": "2024-01-02T10:00:00Z", "value": 1300, "title": "c"},
		{"last_refresh_time": "2024-01-02T11:00:00Z", "value": "1299", "title": "string value"},
		{"last_refresh_time": "2024-01-02T11:00:00Z", "value": null, "title": "null value"},
		{"last_refresh_time": "2024-01-02T11:00:00Z", "title": "missing value"},
		{"last_refresh_time": "yesterday", "value": 10, "title": "bad time"},
		{"last_refresh_time": 1704196800000, "value": 5}
	]`

	at := func(h int) int64 { return time.Date(2024, 1, 2, h, 0, 0, 0, time.UTC).UnixMilli() }
	want := []models.Sample{
		{Timestamp: at(9), Value: 49.99, Label: "a"},
		{Timestamp: at(10), Value: 1299, Label: "b"},
		{Timestamp: at(10), Value: 1300, Label: "c"},
		{Timestamp: at(12), Value: 5},
	}

	got := Normalize(Decode([]byte(body)), models.FieldPaths{})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeCustomFields(t *testing.T) {
	body := `[
		{"seen": {"at": "2024-05-01 12:00:00"}, "price": {"amount": 100}, "name": "x"},
		{"seen": {"at": "2024-05-01 11:00:00"}, "price": {"amount": 90}, "name": "y"}
	]`
	fields := models.FieldPaths{Timestamp: "$.seen.at", Value: "$.price.amount", Label: "$.name"}

	got := Normalize(Decode([]byte(body)), fields)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0].Value != 90 || got[0].Label != "y" {
		t.Errorf("expected earliest sample first, got %+v", got[0])
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize(nil, DefaultFields); len(got) != 0 {
		t.Errorf("expected no samples, got %v", got)
	}
}

func TestValidateFields(t *testing.T) {
	if err := ValidateFields(models.FieldPaths{}); err != nil {
		t.Errorf("default paths must validate: %v", err)
	}
	if err := ValidateFields(models.FieldPaths{Value: "$.value["}); err == nil {
		t.Errorf("expected an error for a malformed path")
	}
}
