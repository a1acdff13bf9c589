// internal/api/handler/response.go
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"txledger/internal/api/types"
	"txledger/internal/util" // For custom errors
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Responder writes JSON bodies and maps errors to status codes.
// It is shared by handlers and middleware.
type Responder struct {
	logger *slog.Logger
	debug  bool
}

// NewResponder creates a Responder. With debug set, unexpected errors
// expose their text in the "detail" field.
func NewResponder(logger *slog.Logger, debug bool) *Responder {
	return &Responder{logger: logger, debug: debug}
}

// Logger returns the logger used for unhandled errors.
func (rp *Responder) Logger() *slog.Logger {
	return rp.logger
}

// RespondWithJSON sends payload as JSON with the given status code.
func (rp *Responder) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		rp.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// RespondWithError maps err onto a status code and error body.
func (rp *Responder) RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	body := types.ErrorResponse{Error: "internal server error"}

	if verr, ok := util.AsValidationError(err); ok {
		rp.RespondWithJSON(w, http.StatusUnprocessableEntity, types.ErrorResponse{
			Error:  "validation failed",
			Fields: verr.Fields,
		})
		return
	}

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		body.Error = util.ErrInvalidInput.Error()
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		body.Error = util.ErrUnauthorized.Error()
		w.Header().Set("WWW-Authenticate", "Bearer")
	case util.IsError(err, util.ErrConflict):
		statusCode = http.StatusConflict
		body.Error = util.ErrConflict.Error()
	case util.IsError(err, util.ErrWeakPassword):
		statusCode = http.StatusBadRequest
		body.Error = util.ErrWeakPassword.Error()
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		body.Error = util.ErrNotFound.Error()
	default:
		rp.logger.Error("Unhandled service error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
		if rp.debug {
			body.Detail = err.Error()
		}
	}

	rp.RespondWithJSON(w, statusCode, body)
}

// decodeJSON reads a single JSON object from the request body into dst.
// Any syntax or type error is reported as util.ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return util.ErrInvalidInput
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return util.ErrInvalidInput
	}
	return nil
}
