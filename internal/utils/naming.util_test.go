package utils

import "testing"

func TestSanitizeFilesystemName(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"1234":             "1234",
		"iPhone 15 / Pro!": "iphone-15-pro",
		"---":              "observation",
		"a__b":             "a__b",
	}
	for in, want := range tests {
		if got := SanitizeFilesystemName(in); got != want {
			t.Errorf("SanitizeFilesystemName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeTableName(t *testing.T) {
	tests := map[string]string{
		"":               DefaultPreferencesTable,
		"Prefs":          "prefs",
		"drop table; --": "drop_table",
		"__x__":          "x",
	}
	for in, want := range tests {
		if got := SanitizeTableName(in); got != want {
			t.Errorf("SanitizeTableName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterObservationPayload(t *testing.T) {
	record := map[string]any{
		"id":          "1",
		"categoryId":  "99",
		"offers":      []any{},
		"lastChecked": "2024-01-01",
		"keywords":    "iphone",
		"state":       "used",
		"city":        nil,
		"brand":       "  ",
		"maxPrice":    int64(2000),
	}
	filters := FilterObservationPayload(record)
	if got := FormatFilters(filters); got != "keywords:iphone maxPrice:2000 state:used" {
		t.Errorf("unexpected filters %q", got)
	}
	if FormatFilters(nil) != "" {
		t.Errorf("no filters must format as empty")
	}
}
