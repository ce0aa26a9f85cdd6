package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jmwislek/order-notify-service/internal/observability"
)

func TestMiddleware_ThroughHandler(t *testing.T) {
	mockClient := &mockWeatherClient{temperature: 12.0}
	handler, _ := newTestDeps(mockClient, &fakeSender{result: true}, nil)

	logger, _ := zap.NewDevelopment()
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	req := httptest.NewRequest("GET", "/api/weather/madrid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("X-Correlation-ID header missing")
	}
}

func TestMiddleware_CorrelationIDPropagated(t *testing.T) {
	handler, _ := newTestDeps(&mockWeatherClient{temperature: 12.0}, &fakeSender{result: true}, nil)

	logger, _ := zap.NewDevelopment()
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	req := httptest.NewRequest("GET", "/api/weather/madrid", nil)
	req.Header.Set("X-Correlation-ID", "client-provided-id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "client-provided-id" {
		t.Errorf("X-Correlation-ID = %q, want client-provided-id", got)
	}
}

func TestMiddleware_MetricsRecordsNonOK(t *testing.T) {
	mockClient := &mockWeatherClient{err: http.ErrHandlerTimeout}
	handler, _ := newTestDeps(mockClient, &fakeSender{result: true}, nil)

	logger, _ := zap.NewDevelopment()
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	req := httptest.NewRequest("GET", "/api/weather/madrid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestMiddleware_HealthThroughChain(t *testing.T) {
	handler, _ := newTestDeps(&mockWeatherClient{}, &fakeSender{result: true}, nil)

	logger, _ := zap.NewDevelopment()
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestTimeoutMiddleware_CancelsContextAfterTimeout(t *testing.T) {
	slowClient := &mockWeatherClient{}
	slowClient.block = make(chan struct{})
	defer close(slowClient.block)

	handler, _ := newTestDeps(slowClient, &fakeSender{result: true}, nil)

	logger, _ := zap.NewDevelopment()
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(TimeoutMiddleware(50 * time.Millisecond))
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	req := httptest.NewRequest("GET", "/api/weather/madrid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d (timeout should cause upstream error)", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRateLimitMiddleware_Returns429WhenExceeded(t *testing.T) {
	handler, _ := newTestDeps(&mockWeatherClient{temperature: 10.0}, &fakeSender{result: true}, nil)

	logger, _ := zap.NewDevelopment()
	limiter := rate.NewLimiter(1, 2)

	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(RateLimitMiddleware(limiter))
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/weather/madrid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if i < 2 {
			if w.Code != http.StatusOK {
				t.Errorf("request %d: status = %d, want 200", i, w.Code)
			}
		} else {
			if w.Code != http.StatusTooManyRequests {
				t.Errorf("request %d: status = %d, want 429", i, w.Code)
			}
			var errResp struct {
				Error struct {
					Code      string `json:"code"`
					Message   string `json:"message"`
					RequestID string `json:"requestId"`
				} `json:"error"`
			}
			if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode 429 response: %v", err)
			}
			if errResp.Error.Code != "RATE_LIMITED" {
				t.Errorf("error.code = %q, want RATE_LIMITED", errResp.Error.Code)
			}
		}
	}
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	handler, _ := newTestDeps(&mockWeatherClient{temperature: 10.0}, &fakeSender{result: true}, nil)

	logger, _ := zap.NewDevelopment()
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(RateLimitMiddleware(nil))
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	req := httptest.NewRequest("GET", "/api/weather/madrid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (nil limiter should allow)", w.Code)
	}
}

func TestGetRoute_Templates(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/api/weather/madrid", "/api/weather/{city}"},
		{"/api/weather/new%20york", "/api/weather/{city}"},
		{"/api/users/42", "/api/users/{id}"},
		{"/api/users", "/api/users"},
		{"/api/orders", "/api/orders"},
		{"/api/price", "/api/price"},
		{"/foo", "/foo"},
	}

	for _, tc := range tests {
		req := httptest.NewRequest("GET", tc.path, nil)
		if got := getRoute(req); got != tc.want {
			t.Errorf("getRoute(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestMetricsMiddleware_TracksInFlight(t *testing.T) {
	var during int64
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = InFlightCount()
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/foo", nil)
	w := httptest.NewRecorder()
	MetricsMiddleware(inner).ServeHTTP(w, req)

	if during != 1 {
		t.Errorf("in-flight count during request = %d, want 1", during)
	}
	if got := InFlightCount(); got != 0 {
		t.Errorf("in-flight count after request = %d, want 0", got)
	}
}

func TestMiddleware_GetRouteDefaultPath(t *testing.T) {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(zap.NewNop()))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/foo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/foo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestMiddleware_MetricsRoute(t *testing.T) {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(zap.NewNop()))
	router.Use(MetricsMiddleware)
	router.Handle("/metrics", observability.MetricsHandler())

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestSubrouter_APIRoutesWithTimeoutAndRateLimit(t *testing.T) {
	handler, _ := newTestDeps(&mockWeatherClient{temperature: 10.0}, &fakeSender{result: true}, nil)

	logger, _ := zap.NewDevelopment()
	limiter := rate.NewLimiter(10, 10)

	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(RateLimitMiddleware(limiter))
	apiRouter.Use(TimeoutMiddleware(5 * time.Second))
	apiRouter.HandleFunc("/weather/{city}", handler.GetWeather).Methods("GET")
	apiRouter.HandleFunc("/orders", handler.ProcessOrder).Methods("POST")

	router.HandleFunc("/health", handler.GetHealth).Methods("GET")

	req := httptest.NewRequest("GET", "/api/weather/madrid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (subrouter should route /api/weather/{city})", w.Code)
	}
}
