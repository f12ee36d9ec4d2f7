package response

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"planetinfo-server/internal/shared/errors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type errorClass struct {
	status int
	level  slog.Level
	log    string
}

var classes = map[errors.ErrorType]errorClass{
	errors.ErrorTypeNotFound:         {http.StatusNotFound, slog.LevelDebug, "Resource not found"},
	errors.ErrorTypeValidation:       {http.StatusBadRequest, slog.LevelDebug, "Validation error"},
	errors.ErrorTypeMethodNotAllowed: {http.StatusMethodNotAllowed, slog.LevelDebug, "Method not allowed"},
	errors.ErrorTypeUnauthorized:     {http.StatusUnauthorized, slog.LevelWarn, "Authorization error"},
	errors.ErrorTypeForbidden:        {http.StatusForbidden, slog.LevelWarn, "Authorization error"},
	errors.ErrorTypeUnavailable:      {http.StatusServiceUnavailable, slog.LevelInfo, "Resource unavailable"},
	errors.ErrorTypeInternal:         {http.StatusInternalServerError, slog.LevelError, "Internal server error"},
}

// internalMessage replaces the text of unclassified errors so raw causes
// such as driver errors never reach clients.
const internalMessage = "internal server error"

func classify(err error) (errors.ErrorType, errorClass) {
	t := errors.GetType(err)
	c, ok := classes[t]
	if !ok {
		t = errors.ErrorTypeInternal
		c = classes[t]
	}
	return t, c
}

// Error logs err and writes it as a JSON error response. It is the only
// place where request errors are logged.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	errorType, class := classify(err)

	logger.LogAttrs(r.Context(), class.level, class.log,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("error_type", string(errorType)),
		slog.Int("status_code", class.status),
		slog.Any("error", err),
	)

	message := internalMessage
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = err.Error()
	}
	writeJSON(w, class.status, ErrorResponse{
		Error:   string(errorType),
		Message: message,
		Code:    class.status,
	})
}

// Success writes data as a JSON body with the given status.
func Success(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, data)
}

// PNG writes an encoded image body with the given cache lifetime in seconds.
func PNG(w http.ResponseWriter, body []byte, maxAge int) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if maxAge > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	// The status line is already out; an encoding failure cannot be reported.
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode response body", "error", err)
	}
}
