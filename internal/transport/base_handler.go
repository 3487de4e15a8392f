package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rahmatagung/user-management/internal"
	"github.com/rahmatagung/user-management/pkg/logger"
)

// Envelope is the uniform response shape for every endpoint. Clients branch
// on Status; validation failures carry one message per violated rule in
// Errors.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

func (h *BaseHandler) writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess writes a success envelope with the given payload.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.writeEnvelope(w, status, Envelope{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// WriteError writes an error envelope with a single message.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.writeEnvelope(w, status, Envelope{
		Status:  StatusError,
		Message: message,
		Errors:  []string{message},
	})
}

// WriteAppError maps an error to the envelope. AppErrors keep their own HTTP
// status and rule messages; anything else becomes an opaque 500 so internals
// never leak to clients.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.Logger.Warn("request failed", "status", appErr.StatusCode, "code", appErr.Code, "message", appErr.Message)
		h.writeEnvelope(w, appErr.StatusCode, Envelope{
			Status:  StatusError,
			Message: appErr.Message,
			Errors:  appErr.Messages(),
		})
		return
	}

	h.Logger.Error("unexpected error", "error", err)
	h.writeEnvelope(w, http.StatusInternalServerError, Envelope{
		Status:  StatusError,
		Message: "An internal server error occurred",
		Errors:  []string{"An internal server error occurred"},
	})
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
