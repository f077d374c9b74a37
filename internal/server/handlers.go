// Package server provides HTTP handlers and server setup for the venue
// search backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/CelebrityPunks/date-genie/internal/core"
	"github.com/CelebrityPunks/date-genie/internal/metrics"
)

// Searcher executes a validated search request.
type Searcher interface {
	Search(ctx context.Context, req *core.SearchRequest) (*core.SearchResult, error)
}

// Handler holds the HTTP handlers
type Handler struct {
	searcher Searcher
	validate *validator.Validate
}

// NewHandler creates a new handler with the given searcher
func NewHandler(searcher Searcher) *Handler {
	return &Handler{
		searcher: searcher,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Search handles POST /search
func (h *Handler) Search(c echo.Context) error {
	start := time.Now()

	var req core.SearchRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, start, core.NewValidationError("invalid request body: "+err.Error(), err))
	}

	if err := h.validate.Struct(&req); err != nil {
		return respondError(c, start, core.NewValidationError(validationMessage(err), err))
	}

	result, err := h.searcher.Search(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, start, err)
	}

	venues := result.Venues
	if venues == nil {
		venues = []core.Venue{}
	}

	elapsed := time.Since(start)
	metrics.SearchLatency.Observe(elapsed.Seconds())

	return c.JSON(http.StatusOK, core.SearchResponse{
		Success: true,
		Source:  result.Source,
		Data:    venues,
		Latency: elapsed.Milliseconds(),
	})
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// respondError maps errors to the response envelope, keeping enough detail
// for the caller to distinguish validation failures from upstream failures.
func respondError(c echo.Context, start time.Time, err error) error {
	status := http.StatusInternalServerError
	message := "an unexpected error occurred"

	var appErr *core.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatusCode()
		message = appErr.Message
	} else {
		slog.Error("unhandled search error", "error", err)
	}

	return c.JSON(status, core.SearchResponse{
		Success: false,
		Data:    []core.Venue{},
		Latency: time.Since(start).Milliseconds(),
		Error:   message,
	})
}

// validationMessage renders a field-level message for the first failed rule.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("field %q failed validation rule %q (%s)", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("field %q failed validation rule %q", fe.Field(), fe.Tag())
	}
	return "invalid request: " + err.Error()
}
