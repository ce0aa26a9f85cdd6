package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jmwislek/order-notify-service/internal/observability"
	"github.com/jmwislek/order-notify-service/internal/orders"
	"github.com/jmwislek/order-notify-service/internal/pricing"
	"github.com/jmwislek/order-notify-service/internal/service"
	"github.com/jmwislek/order-notify-service/internal/store"
	"github.com/jmwislek/order-notify-service/internal/traffic"
	"github.com/jmwislek/order-notify-service/internal/users"
	"github.com/jmwislek/order-notify-service/internal/validation"
)

// HealthConfig holds thresholds and probes for the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
	// CachePing, when set, is called to check cache reachability. Used when backend is memcached.
	CachePing func() error
	// StoreConnected, when set, reports whether the user store is accepting operations.
	StoreConnected func() bool
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	readings     *service.ReadingService
	orders       *orders.Processor
	users        *users.Repository
	healthConfig *HealthConfig
	logger       *zap.Logger
	cityMinLen   int
	cityMaxLen   int

	shuttingDown     atomic.Bool
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(
	readings *service.ReadingService,
	orderProcessor *orders.Processor,
	userRepo *users.Repository,
	healthConfig *HealthConfig,
	logger *zap.Logger,
	cityMinLen, cityMaxLen int,
) *Handler {
	return &Handler{
		readings:     readings,
		orders:       orderProcessor,
		users:        userRepo,
		healthConfig: healthConfig,
		logger:       logger,
		cityMinLen:   cityMinLen,
		cityMaxLen:   cityMaxLen,
	}
}

// SetShuttingDown marks the handler as draining. Health reports shutting-down afterwards.
func (h *Handler) SetShuttingDown(v bool) {
	h.shuttingDown.Store(v)
}

type orderRequest struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
	City    string `json:"city"`
}

// ProcessOrder handles POST /api/orders.
// Confirms the order and sends a confirmation email; the message mentions the
// weather when it is good in the customer's city. A weather lookup failure
// aborts the order with 503, a notification failure does not.
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	var body orderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	if !validation.ValidateEmail(body.Email) {
		writeError(w, r, http.StatusBadRequest, "INVALID_EMAIL", "email is not valid")
		return
	}
	city, err := validation.ValidateCity(body.City, h.cityMinLen, h.cityMaxLen)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_CITY", err.Error())
		return
	}
	orderID := strings.TrimSpace(body.OrderID)
	if orderID == "" {
		orderID = "ORD-" + uuid.New().String()
	}

	result, err := h.orders.ProcessOrder(r.Context(), orderID, body.Email, city)
	if err != nil {
		traffic.RecordError()
		writeServiceError(w, r, err)
		return
	}
	traffic.RecordSuccess()
	writeJSON(w, http.StatusOK, result)
}

// GetWeather handles GET /api/weather/{city}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city, err := validation.ValidateCity(mux.Vars(r)["city"], h.cityMinLen, h.cityMaxLen)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_CITY", err.Error())
		return
	}

	observability.RecordWeatherQuery(city)
	result, err := h.readings.GetReading(r.Context(), city)
	if err != nil {
		traffic.RecordError()
		writeServiceError(w, r, err)
		return
	}
	traffic.RecordSuccess()
	writeJSON(w, http.StatusOK, result)
}

type userRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body userRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	id := strings.TrimSpace(body.ID)
	name := strings.TrimSpace(body.Name)
	if id == "" || name == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "id and name are required")
		return
	}

	user, err := h.users.CreateUser(r.Context(), id, name, body.Email)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidEmail):
			observability.UsersCreatedTotal.WithLabelValues("invalid_email").Inc()
			writeError(w, r, http.StatusBadRequest, "INVALID_EMAIL", "email is not valid")
		case errors.Is(err, store.ErrNotConnected):
			observability.UsersCreatedTotal.WithLabelValues("store_error").Inc()
			writeError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "user store is unavailable")
		default:
			observability.UsersCreatedTotal.WithLabelValues("store_error").Inc()
			writeError(w, r, http.StatusInternalServerError, "INTERNAL", "could not create user")
		}
		return
	}
	observability.UsersCreatedTotal.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /api/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "id is required")
		return
	}

	user, ok, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotConnected) {
			writeError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "user store is unavailable")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "could not load user")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "no user with id "+id)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetPrice handles GET /api/price?price=&quantity=&discount=.
// Computes the discounted order total without touching any order state.
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	price, err := strconv.ParseFloat(q.Get("price"), 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "price must be a number")
		return
	}
	quantity, err := strconv.Atoi(q.Get("quantity"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "quantity must be an integer")
		return
	}
	discount := 0.0
	if s := q.Get("discount"); s != "" {
		discount, err = strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "discount must be a number")
			return
		}
	}

	total, err := pricing.TotalPrice(price, quantity, discount)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"price":           price,
		"quantity":        quantity,
		"discountPercent": discount,
		"total":           total,
	})
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus(r.Context())

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := make(map[string]string)
	if result.reason == "error_rate_breach" {
		checks["weatherApi"] = "unhealthy"
	} else {
		checks["weatherApi"] = "healthy"
	}
	if h.healthConfig != nil && h.healthConfig.StoreConnected != nil {
		if h.healthConfig.StoreConnected() {
			checks["userStore"] = "healthy"
		} else {
			checks["userStore"] = "unhealthy"
		}
	}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if h.healthConfig.CachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "order-notify-service",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// computeHealthStatus determines the current health status by evaluating conditions
// in priority order. Returns healthResult with status, HTTP status code, and reason.
// Decision order: shutting-down > store disconnected > error rate breach > healthy.
func (h *Handler) computeHealthStatus(ctx context.Context) healthResult {
	// Priority 1: Check if service is shutting down
	if h.shuttingDown.Load() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}
	}
	// Priority 2: The user store must accept operations
	if h.healthConfig.StoreConnected != nil && !h.healthConfig.StoreConnected() {
		return healthResult{"degraded", http.StatusServiceUnavailable, "store_disconnected"}
	}
	// Priority 3: Check degraded state (error rate exceeds configured threshold)
	if h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 {
		errors, total := traffic.ErrorRate(h.healthConfig.DegradedWindow)
		if total > 0 {
			pct := float64(errors) * 100 / float64(total)
			if pct >= float64(h.healthConfig.DegradedErrorPct) {
				return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
			}
		}
	}
	// Default: All checks passed, service is healthy
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
// Sets Content-Type header to application/json and encodes the provided value.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeServiceError writes a 503 Service Unavailable error response for upstream failures.
// Logs the underlying error at DEBUG level if logger is available in request context.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Unable to fetch weather data")
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Debug("upstream error", zap.Error(err))
	}
}
