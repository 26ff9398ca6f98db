package handlers

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/estate-intake-backend/internal/api/response"
	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
	"github.com/welldanyogia/estate-intake-backend/internal/services"
)

// ListingHandler handles listing HTTP requests
type ListingHandler struct {
	svc    services.IntakeService
	logger *slog.Logger
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(svc services.IntakeService, logger *slog.Logger) *ListingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingHandler{svc: svc, logger: logger}
}

// Fetch handles GET /fetch
func (h *ListingHandler) Fetch(c echo.Context) error {
	props, err := h.svc.Listings(c.Request().Context())
	if err != nil {
		h.logFailure("fetch", err)
		return response.ListingsError(c)
	}
	return response.Listings(c, response.MsgListings, props)
}

// FetchViewable handles GET /fetch_naiken
func (h *ListingHandler) FetchViewable(c echo.Context) error {
	props, err := h.svc.ViewableListings(c.Request().Context())
	if err != nil {
		h.logFailure("fetch_naiken", err)
		return response.ListingsError(c)
	}
	return response.Listings(c, response.MsgViewableListings, props)
}

func (h *ListingHandler) logFailure(op string, err error) {
	h.logger.Error("failed to read listings",
		slog.String("op", op),
		slog.String("code", apperrors.GetErrorCode(err)),
		slog.Any("error", err),
	)
}
