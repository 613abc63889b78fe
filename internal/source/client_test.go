package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"offer-tracker/internal/api/models"
)

type fakeAPI struct {
	mu        sync.Mutex
	refreshed []string
	failID    string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/observations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "1", "categoryId": "99", "keywords": "iphone", "state": "used", "offers": [], "lastChecked": "x"},
			{"id": 2, "categoryId": 100, "city": null},
			"not an object"
		]`))
	})
	mux.HandleFunc("GET /api/offers/by-observation/{key}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("key") == "broken" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"last_refresh_time": "2024-01-01T00:00:01Z", "value": 2},
			{"last_refresh_time": "2024-01-01T00:00:00Z", "value": 1}]`))
	})
	mux.HandleFunc("POST /api/observations/{id}/refresh", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == f.failID {
			http.Error(w, "nope", http.StatusBadGateway)
			return
		}
		f.mu.Lock()
		f.refreshed = append(f.refreshed, id)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", srv.Client(), models.FieldPaths{})
}

func TestClientSamples(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	got := c.Samples(context.Background(), "99")
	if len(got) != 2 || got[0].Value != 1 || got[1].Value != 2 {
		t.Errorf("expected two sorted samples, got %+v", got)
	}

	if got := c.Samples(context.Background(), "broken"); got == nil || len(got) != 0 {
		t.Errorf("a failed fetch must yield an empty, non-nil list, got %v", got)
	}
	if got := c.Samples(context.Background(), " "); len(got) != 0 {
		t.Errorf("expected no samples without a key, got %v", got)
	}
}

func TestClientSamplesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, http.DefaultClient, models.FieldPaths{})
	if got := c.Samples(context.Background(), "99"); len(got) != 0 {
		t.Errorf("expected an empty list from an unreachable API, got %v", got)
	}
}

func TestListObservations(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	got, err := c.ListObservations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.Observation{
		{
			ID:         "1",
			CategoryID: "99",
			Filters:    map[string]any{"keywords": "iphone", "state": "used"},
			Label:      "99 keywords:iphone state:used",
		},
		{ID: "2", CategoryID: "100", Filters: map[string]any{}, Label: "100"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("observations mismatch (-want +got):\n%s", diff)
	}

	if obs, ok := FindObservation(got, "100"); !ok || obs.ID != "2" {
		t.Errorf("expected selection by category id, got %+v", obs)
	}
	if _, ok := FindObservation(got, "1"); ok {
		t.Errorf("observation ids are not selection keys")
	}
}

func TestRefreshAll(t *testing.T) {
	api := &fakeAPI{failID: "2"}
	c := newTestClient(t, api)

	n, err := c.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one successful refresh, got %d", n)
	}
	sort.Strings(api.refreshed)
	if diff := cmp.Diff([]string{"1"}, api.refreshed); diff != "" {
		t.Errorf("refreshed ids mismatch (-want +got):\n%s", diff)
	}
}
