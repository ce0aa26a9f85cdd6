package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jmwislek/order-notify-service/internal/models"
	"github.com/jmwislek/order-notify-service/internal/observability"
	"github.com/jmwislek/order-notify-service/internal/orders"
	"github.com/jmwislek/order-notify-service/internal/service"
	"github.com/jmwislek/order-notify-service/internal/store"
	"github.com/jmwislek/order-notify-service/internal/users"
	"github.com/jmwislek/order-notify-service/internal/weather"
)

// createBenchmarkRequest creates an HTTP request for benchmarking.
func createBenchmarkRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	logger, _ := zap.NewDevelopment()
	req = req.WithContext(context.WithValue(req.Context(), "correlation_id", "bench-id"))
	req = req.WithContext(context.WithValue(req.Context(), "logger", logger))
	return req
}

// BenchmarkHandler_GetWeather_CacheHit benchmarks the weather handler with a warm cache.
func BenchmarkHandler_GetWeather_CacheHit(b *testing.B) {
	handler, _ := newTestDeps(&mockWeatherClient{temperature: 15.5}, &fakeSender{result: true}, nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	// Warm the cache with one real request
	warm := createBenchmarkRequest("GET", "/api/weather/madrid")
	router.ServeHTTP(httptest.NewRecorder(), warm)

	req := createBenchmarkRequest("GET", "/api/weather/madrid")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkHandler_GetWeather_Error benchmarks handler error handling.
func BenchmarkHandler_GetWeather_Error(b *testing.B) {
	mockClient := &mockWeatherClient{err: weather.ErrUpstreamFailure}
	handler, _ := newTestDeps(mockClient, &fakeSender{result: true}, nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	req := createBenchmarkRequest("GET", "/api/weather/madrid")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkHandler_GetWeather_ValidationError benchmarks validation error handling.
func BenchmarkHandler_GetWeather_ValidationError(b *testing.B) {
	handler, _ := newTestDeps(&mockWeatherClient{}, &fakeSender{result: true}, nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/weather/{city}", handler.GetWeather)

	req := createBenchmarkRequest("GET", "/api/weather/x")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkHandler_ProcessOrder benchmarks the full order confirmation flow.
func BenchmarkHandler_ProcessOrder(b *testing.B) {
	handler, _ := newTestDeps(&mockWeatherClient{temperature: 25.5}, &fakeSender{result: true}, nil)

	body := `{"orderId": "ORD-1", "email": "ana@example.com", "city": "madrid"}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.ProcessOrder(w, req)
	}
}

// BenchmarkHandler_GetPrice benchmarks the price computation endpoint.
func BenchmarkHandler_GetPrice(b *testing.B) {
	handler, _ := newTestDeps(&mockWeatherClient{}, &fakeSender{result: true}, nil)

	req := createBenchmarkRequest("GET", "/api/price?price=100&quantity=2&discount=10")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		handler.GetPrice(w, req)
	}
}

// BenchmarkHandler_GetHealth benchmarks the health check endpoint.
func BenchmarkHandler_GetHealth(b *testing.B) {
	db := store.NewMemory[models.User]()
	db.Connect()

	healthConfig := &HealthConfig{
		DegradedWindow:   5 * time.Minute,
		DegradedErrorPct: 5,
		StoreConnected:   db.Connected,
	}

	logger, _ := observability.NewLogger("order-notify-service")
	mockClient := &mockWeatherClient{}
	readings := service.NewReadingService(mockClient, &mockCache{data: make(map[string]models.WeatherReading)}, 5*time.Minute)
	handler := NewHandler(readings, orders.NewProcessor(mockClient, &fakeSender{result: true}), users.NewRepository(db), healthConfig, logger, 2, 64)

	router := mux.NewRouter()
	router.HandleFunc("/health", handler.GetHealth)

	req := createBenchmarkRequest("GET", "/health")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}
