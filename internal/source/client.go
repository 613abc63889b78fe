package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/utils"
)

// refreshConcurrency bounds the refresh-all fan-out against the listings API.
const refreshConcurrency = 4

// Client talks to the listings API.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.RWMutex
	fields models.FieldPaths
}

// NewClient returns a client for baseURL. A nil httpClient uses the shared one.
func NewClient(baseURL string, httpClient *http.Client, fields models.FieldPaths) *Client {
	if httpClient == nil {
		httpClient = utils.GetHTTPClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		fields:  WithDefaults(fields),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetFields swaps the projection used by Samples.
func (c *Client) SetFields(fields models.FieldPaths) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = WithDefaults(fields)
}

func (c *Client) Fields() models.FieldPaths {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fields
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// Samples fetches the offers of one observation. Failures are logged and
// produce an empty list.
func (c *Client) Samples(ctx context.Context, observationKey string) []models.Sample {
	if utils.IsEmptyOrWhitespace(observationKey) {
		return []models.Sample{}
	}
	body, err := utils.FetchWithLimits(ctx, c.http, http.MethodGet, c.endpoint("offers", "by-observation", observationKey), nil)
	if err != nil {
		if ctx.Err() == nil {
			utils.LogWarnWithContext("source", fmt.Sprintf("failed to fetch samples for %s", observationKey), err)
		}
		return []models.Sample{}
	}
	return Normalize(Decode(body), c.Fields())
}

// ListObservations fetches the registered observations.
func (c *Client) ListObservations(ctx context.Context) ([]models.Observation, error) {
	body, err := utils.FetchWithLimits(ctx, c.http, http.MethodGet, c.endpoint("observations"), nil)
	if err != nil {
		return nil, err
	}

	records := Decode(body)
	observations := make([]models.Observation, 0, len(records))
	for _, rec := range records {
		m, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		obs := models.Observation{
			ID:         text(m["id"]),
			CategoryID: text(m["categoryId"]),
			Filters:    utils.FilterObservationPayload(m),
		}
		if obs.ID == "" && obs.CategoryID == "" {
			continue
		}
		obs.Label = ObservationLabel(obs)
		observations = append(observations, obs)
	}
	return observations, nil
}

// ObservationLabel renders "<categoryId> k:v ..." for selectors.
func ObservationLabel(obs models.Observation) string {
	filters := utils.FormatFilters(obs.Filters)
	if filters == "" {
		return obs.CategoryID
	}
	return strings.TrimSpace(obs.CategoryID + " " + filters)
}

// FindObservation resolves a selection key against the observation list.
func FindObservation(observations []models.Observation, key string) (models.Observation, bool) {
	for _, o := range observations {
		if o.CategoryID == key {
			return o, true
		}
	}
	return models.Observation{}, false
}

// RefreshObservation asks the listings API to re-scrape one observation.
func (c *Client) RefreshObservation(ctx context.Context, id string) error {
	_, err := utils.FetchWithLimits(ctx, c.http, http.MethodPost, c.endpoint("observations", id, "refresh"), nil)
	if err != nil {
		return fmt.Errorf("refresh observation %s: %w", id, err)
	}
	return nil
}

// RefreshAll refreshes every observation concurrently. Individual failures
// are logged; the count of successful refreshes is returned.
func (c *Client) RefreshAll(ctx context.Context) (int, error) {
	observations, err := c.ListObservations(ctx)
	if err != nil {
		return 0, err
	}

	var (
		mu        sync.Mutex
		refreshed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, obs := range observations {
		if obs.ID == "" {
			continue
		}
		g.Go(func() error {
			if err := c.RefreshObservation(gctx, obs.ID); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				utils.LogWarnWithContext("source", "refresh failed", err)
				return nil
			}
			mu.Lock()
			refreshed++
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	return refreshed, err
}
