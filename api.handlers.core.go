package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

var EmptyData = struct{}{}

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	message string
	started time.Time
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger  *zap.Logger
	config  *Config
	stats   *Statistics
	mode    *Maintenance
	clock   Clocker
	library LibraryServiceProvider
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(logger *zap.Logger, config *Config, stats *Statistics, clock Clocker, library LibraryServiceProvider) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	return &APIHandler{logger: logger, config: config, stats: stats, mode: m, clock: clock, library: library}
}

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"requestid": requestID,
			"status":    fmt.Sprintf("up & running since %.0f mins", time.Since(api.stats.started).Minutes()),
			"message":   "Hello. School library api is available. Enjoy :)",
		},
	); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// NotFound returns the handler used for all unknown routes.
func (api *APIHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errResp := NewAPIError("", http.StatusNotFound, "route does not exist", EmptyData)
		if err := WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send not found response", zap.Error(err))
		}
	})
}

// sendError logs a failed operation then converts its error into the
// matching HTTP status with a json payload.
func (api *APIHandler) sendError(w http.ResponseWriter, requestID, message string, opErr error, data interface{}) {
	status := http.StatusInternalServerError
	switch opErr {
	case ErrBookNotFound, ErrLoanNotFound:
		status = http.StatusNotFound
	case ErrDuplicateISBN:
		status = http.StatusConflict
	case ErrBookUnavailable, ErrInsufficientCopies:
		status = http.StatusBadRequest
	}
	api.logger.Error(message, zap.String("request.id", requestID), zap.Error(opErr))
	errResp := NewAPIError(requestID, status, message, data)
	if err := WriteErrorResponse(w, errResp); err != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// sendBadRequest logs a rejected payload then responds with 400.
func (api *APIHandler) sendBadRequest(w http.ResponseWriter, requestID, message string, opErr error, data interface{}) {
	api.logger.Error(message, zap.String("request.id", requestID), zap.Error(opErr))
	errResp := NewAPIError(requestID, http.StatusBadRequest, message, data)
	if err := WriteErrorResponse(w, errResp); err != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}
