package utils

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"offer-tracker/internal/config"
)

const userAgent = "offer-tracker/1.0"

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	MaxConnsPerHost       int
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	ConnectTimeout        time.Duration
	RequestTimeout        time.Duration
	ResponseHeaderTimeout time.Duration
	MaxResponseSize       int64
	TLSHandshakeTimeout   time.Duration
}

var (
	httpConfig   *HTTPConfig
	httpClient   *http.Client
	httpClientMu sync.Mutex
)

// HTTPConfigFromEnv builds the client configuration from the environment.
func HTTPConfigFromEnv() *HTTPConfig {
	env := config.GetEnvConfig()
	return &HTTPConfig{
		MaxConnsPerHost:       env.HTTPMaxConnsPerHost,
		MaxIdleConns:          env.HTTPMaxIdleConns,
		MaxIdleConnsPerHost:   env.HTTPMaxIdleConnsPerHost,
		IdleConnTimeout:       env.HTTPIdleConnTimeout,
		ConnectTimeout:        env.HTTPConnectTimeout,
		RequestTimeout:        env.HTTPRequestTimeout,
		ResponseHeaderTimeout: env.HTTPResponseHeaderTimeout,
		MaxResponseSize:       env.HTTPMaxResponseSize,
		TLSHandshakeTimeout:   env.HTTPTLSHandshakeTimeout,
	}
}

// InitHTTPConfig creates the shared listings API client.
func InitHTTPConfig() {
	httpClientMu.Lock()
	defer httpClientMu.Unlock()
	if httpClient != nil {
		return
	}
	httpConfig = HTTPConfigFromEnv()
	httpClient = NewHTTPClient(httpConfig)

	LogInfo("HTTP client initialized with max_conns_per_host=%d, timeout=%v, max_response_size=%d",
		httpConfig.MaxConnsPerHost, httpConfig.RequestTimeout, httpConfig.MaxResponseSize)
}

// NewHTTPClient creates a client with pooled keep-alive connections.
func NewHTTPClient(cfg *HTTPConfig) *http.Client {
	transport := &http.Transport{
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:      true,
		MaxResponseHeaderBytes: 4096,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}
}

// GetHTTPClient returns the shared HTTP client
func GetHTTPClient() *http.Client {
	InitHTTPConfig()
	httpClientMu.Lock()
	defer httpClientMu.Unlock()
	return httpClient
}

func maxResponseSize() int64 {
	httpClientMu.Lock()
	defer httpClientMu.Unlock()
	if httpConfig == nil || httpConfig.MaxResponseSize <= 0 {
		return config.GetEnvConfig().HTTPMaxResponseSize
	}
	return httpConfig.MaxResponseSize
}

// FetchWithLimits performs a request and returns the body of a 2xx response,
// refusing bodies larger than the configured limit.
func FetchWithLimits(ctx context.Context, client *http.Client, method, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, NewNetworkError("request_build", "failed to create request", err).WithContext("url", url)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if client == nil {
		client = GetHTTPClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, NewNetworkError("request_failed", fmt.Sprintf("%s %s", method, url), fmt.Errorf("%w: %v", ErrSourceUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, NewNetworkError("bad_status", fmt.Sprintf("%s %s returned %d", method, url, resp.StatusCode), ErrUnexpectedStatus).
			WithContext("status", resp.StatusCode)
	}

	limit := maxResponseSize()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, NewNetworkError("read_failed", "failed to read response", err)
	}
	if int64(len(data)) > limit {
		return nil, NewNetworkError("too_large", fmt.Sprintf("response exceeds %d bytes", limit), ErrResponseTooLarge)
	}
	return data, nil
}

// CloseHTTPClient releases idle connections of the shared client.
func CloseHTTPClient() {
	httpClientMu.Lock()
	defer httpClientMu.Unlock()

	if httpClient != nil {
		httpClient.CloseIdleConnections()
		LogInfo("HTTP client connections closed")
	}
}

// GetHTTPClientStats reports the active client configuration.
func GetHTTPClientStats() map[string]any {
	httpClientMu.Lock()
	defer httpClientMu.Unlock()
	if httpConfig == nil {
		return map[string]any{"initialized": false}
	}
	return map[string]any{
		"initialized":        true,
		"max_conns_per_host": httpConfig.MaxConnsPerHost,
		"max_idle_conns":     httpConfig.MaxIdleConns,
		"request_timeout":    httpConfig.RequestTimeout.String(),
		"max_response_size":  httpConfig.MaxResponseSize,
	}
}
