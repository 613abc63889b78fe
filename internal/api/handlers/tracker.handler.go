package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"offer-tracker/internal/api/logics"
	"offer-tracker/internal/api/models"
	"offer-tracker/internal/chart"
	"offer-tracker/internal/source"
	"offer-tracker/internal/utils"
)

const (
	maxRequestBody = 64 << 10
	xlsxMediaType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type SelectionRequest struct {
	Observation string `json:"observation"`
	Range       string `json:"range,omitempty"`
	Averaging   *bool  `json:"averaging,omitempty"`
}

type selectionState struct {
	Observation string     `json:"observation"`
	Range       string     `json:"range"`
	Averaging   bool       `json:"averaging"`
	Samples     int        `json:"samples"`
	UpdatedAt   string     `json:"updated_at,omitempty"`
	View        chart.View `json:"view"`
}

var (
	errTrackerNotReady = errors.New("tracker is not initialised")
	startedAt          = time.Now()
)

func requireTracker(w http.ResponseWriter) (*logics.Tracker, bool) {
	t := logics.GetTracker()
	if t == nil {
		writeError(w, utils.NewConfigError("tracker", "tracker is not initialised", errTrackerNotReady))
		return nil, false
	}
	return t, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return utils.NewValidationError("body", "failed to read request body", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return utils.NewValidationError("body", "invalid JSON body", fmt.Errorf("%w: %v", utils.ErrDataUnmarshalFailed, err))
	}
	return nil
}

// historyOptions reads observation, range and averaging from the query.
func historyOptions(r *http.Request) (logics.HistoryOptions, error) {
	q := r.URL.Query()
	opts := logics.HistoryOptions{
		Observation: strings.TrimSpace(q.Get("observation")),
		Range:       strings.TrimSpace(q.Get("range")),
	}
	if raw := q.Get("averaging"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, utils.NewValidationError("averaging", fmt.Sprintf("invalid averaging flag %q", raw), err)
		}
		opts.Averaging = on
	}
	return opts, nil
}

// RangesHandler lists the range catalog and the range currently applied.
func RangesHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	_, current, _ := t.History().Settings()
	writeJSON(w, http.StatusOK, map[string]any{
		"ranges":  chart.Ranges(),
		"current": current.Key,
	})
}

func ObservationsHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	observations, err := t.Observations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, observations)
}

// HistoryHandler builds a chart view for one observation without changing
// the dashboard selection.
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	opts, err := historyOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := t.HistoryView(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func HistoryExportHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	opts, err := historyOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := t.HistoryView(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	buf, err := logics.ExportWorkbook(view, opts.Observation, t.Location())
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", utils.SanitizeFilesystemName(opts.Observation), view.Range.Key)
	w.Header().Set("Content-Type", xlsxMediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func currentSelection(t *logics.Tracker) selectionState {
	h := t.History()
	key, rng, averaging := h.Settings()
	st := selectionState{
		Observation: key,
		Range:       string(rng.Key),
		Averaging:   averaging,
		Samples:     h.SampleCount(),
		View:        h.View(),
	}
	if at := h.UpdatedAt(); !at.IsZero() {
		st.UpdatedAt = utils.FormatTimestamp(at)
	}
	return st
}

// SelectionHandler applies range and averaging first, then switches the
// observation when it differs from the current one. An empty observation
// clears the selection.
func SelectionHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	var req SelectionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	h := t.History()
	key := strings.TrimSpace(req.Observation)
	if key != "" && key != h.Selection() {
		if err := checkObservation(r, t, key); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Range != "" {
		if err := h.SetRange(req.Range); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Averaging != nil {
		h.SetAveraging(*req.Averaging)
	}
	if key != h.Selection() {
		if err := h.Select(key); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, currentSelection(t))
}

// checkObservation rejects keys missing from the observation list. When the
// listings API is unreachable the key is accepted unchecked.
func checkObservation(r *http.Request, t *logics.Tracker, key string) error {
	observations, err := t.Observations(r.Context())
	if err != nil {
		if utils.IsNetworkError(err) {
			utils.LogWarnWithContext("selection", fmt.Sprintf("cannot verify observation %q", key), err)
			return nil
		}
		return err
	}
	if _, found := source.FindObservation(observations, key); !found {
		return utils.NewNotFoundError("observation", fmt.Sprintf("unknown observation %q", key), utils.ErrObservationNotFound)
	}
	return nil
}

func ClearSelectionHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	t.History().Clear()
	writeJSON(w, http.StatusOK, currentSelection(t))
}

func SelectionChartHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, currentSelection(t))
}

// PreferencesHandler reads (GET) or replaces (PUT) the refresh intervals.
func PreferencesHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	if r.Method == http.MethodPut {
		var p models.Preferences
		if err := decodeBody(w, r, &p); err != nil {
			writeError(w, err)
			return
		}
		if err := t.UpdatePreferences(r.Context(), p); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"preferences": t.Preferences(r.Context()),
		"backend":     t.PreferencesBackend(),
	})
}

// StatusHandler reports the pollers, HTTP client limits and, unless
// process=false, process statistics.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	withProcess := true
	if raw := r.URL.Query().Get("process"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, utils.NewValidationError("process", fmt.Sprintf("invalid process flag %q", raw), err))
			return
		}
		withProcess = on
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tracker":     t.Status(withProcess),
		"http_client": utils.GetHTTPClientStats(),
		"time":        utils.FormatTimestamp(utils.NowUTC()),
		"uptime":      time.Since(startedAt).Round(time.Second).String(),
	})
}
