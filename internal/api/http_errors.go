package api

import (
	"errors"
	"net/http"

	"github.com/baton-ai/baton/internal/core"
)

func httpStatusForDomainError(err error) (int, bool) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return 0, false
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusUnprocessableEntity, true
	case core.ErrCatNotFound:
		return http.StatusNotFound, true
	case core.ErrCatConflict:
		return http.StatusConflict, true
	case core.ErrCatState:
		return http.StatusConflict, true
	default:
		return http.StatusInternalServerError, true
	}
}

// respondDomainError maps a domain error onto an HTTP response. Untyped
// errors become opaque 500s so internals never leak to clients.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	status, ok := httpStatusForDomainError(err)
	if !ok {
		s.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var domErr *core.DomainError
	errors.As(err, &domErr)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", domErr.Code, "error", err)
	} else {
		s.logger.Debug("request rejected", "code", domErr.Code, "error", err)
	}
	respondJSON(w, status, map[string]string{
		"error": domErr.Message,
		"code":  domErr.Code,
	})
}
