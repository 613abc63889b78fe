package handlers

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"offer-tracker/internal/config"
	"offer-tracker/internal/utils"
)

func setHeader(w http.ResponseWriter, status int, responseData string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(responseData))
}

// writeJSON replies {"status":true,"data":...}.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(map[string]any{"status": true, "data": data})
	if err != nil {
		utils.LogErrorWithContext("handlers", "failed to marshal response", err)
		setHeader(w, http.StatusInternalServerError, `{"status":false, "error": "Failed to marshal response"}`)
		return
	}
	setHeader(w, status, string(body))
}

// writeError replies {"status":false,"error":...} with a status derived
// from the error category.
func writeError(w http.ResponseWriter, err error) {
	status := utils.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		utils.LogErrorWithContext("handlers", "request failed", err)
	}
	body, _ := json.Marshal(map[string]any{"status": false, "error": err.Error(), "code": utils.GetErrorCode(err)})
	setHeader(w, status, string(body))
}

func getCORSOrigins() string {
	envConfig := config.GetEnvConfig()
	origins := envConfig.CORSAllowedOrigins
	if origins == "" {
		if envConfig.IsProduction() {
			utils.LogFatal("CORS_ALLOWED_ORIGINS must be set in production environment")
		}
		return "http://localhost:3500,http://127.0.0.1:3500"
	}
	return origins
}

func isOriginAllowed(origin string, allowedOrigins string) bool {
	if allowedOrigins == "*" {
		return true
	}
	for allowed := range strings.SplitSeq(allowedOrigins, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}

func CORSMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := getCORSOrigins()

		if origin != "" && isOriginAllowed(origin, allowedOrigins) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if allowedOrigins == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func IsDashboardEnabled() bool {
	return config.GetEnvConfig().IsDashboardEnabled()
}

// Rate limiting structures
type clientEntry struct {
	tokens     float64
	lastRefill time.Time
	mutex      sync.Mutex
}

var (
	rateLimitClients = make(map[string]*clientEntry)
	clientMutex      sync.Mutex
)

func getRateLimitConfig() (requestsPerSecond float64, burstSize int) {
	envConfig := config.GetEnvConfig()
	return envConfig.RateLimitRPS, envConfig.RateLimitBurst
}

// getClientKey extracts client identifier for rate limiting
func getClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// RateLimitMiddleware applies a per-client token bucket.
func RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !config.GetEnvConfig().IsRateLimitEnabled() {
			next(w, r)
			return
		}

		clientKey := getClientKey(r)
		rps, burst := getRateLimitConfig()

		clientMutex.Lock()
		client, exists := rateLimitClients[clientKey]
		if !exists {
			client = &clientEntry{tokens: float64(burst), lastRefill: utils.NowUTC()}
			rateLimitClients[clientKey] = client
		}
		clientMutex.Unlock()

		client.mutex.Lock()
		now := utils.NowUTC()
		client.tokens = min(client.tokens+now.Sub(client.lastRefill).Seconds()*rps, float64(burst))
		client.lastRefill = now
		allowed := client.tokens >= 1
		if allowed {
			client.tokens--
		}
		remaining := int(client.tokens)
		client.mutex.Unlock()

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(time.Second).Unix(), 10))
		if !allowed {
			setHeader(w, http.StatusTooManyRequests, `{"status":false, "error": "Rate limit exceeded"}`)
			return
		}

		next(w, r)
	}
}

func MethodMiddleware(allowedMethods ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(allowedMethods, r.Method) {
				w.Header().Set("Allow", strings.Join(allowedMethods, ", "))
				setHeader(w, http.StatusMethodNotAllowed, `{"status":false, "error": "Method not allowed"}`)
				return
			}
			next(w, r)
		}
	}
}
