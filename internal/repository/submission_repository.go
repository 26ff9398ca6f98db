package repository

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
	"github.com/welldanyogia/estate-intake-backend/internal/sheets"
)

// SubmissionRepository defines the interface for recording form submissions
type SubmissionRepository interface {
	AppendOffer(ctx context.Context, record *models.OfferRecord) error
	AppendViewing(ctx context.Context, record *models.ViewingRecord) error
	AppendNDA(ctx context.Context, record *models.NDARecord) error
}

// LedgerRanges are the A1 ranges each form kind is appended to
type LedgerRanges struct {
	Offer   string
	Viewing string
	NDA     string
}

// submissionRepository implements SubmissionRepository on a spreadsheet
type submissionRepository struct {
	appender      sheets.Appender
	spreadsheetID string
	ranges        LedgerRanges
	logger        *slog.Logger
}

// NewSubmissionRepository creates a new SubmissionRepository instance
func NewSubmissionRepository(appender sheets.Appender, spreadsheetID string, ranges LedgerRanges, logger *slog.Logger) SubmissionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &submissionRepository{
		appender:      appender,
		spreadsheetID: spreadsheetID,
		ranges:        ranges,
		logger:        logger,
	}
}

// AppendOffer records a purchase offer
func (r *submissionRepository) AppendOffer(ctx context.Context, record *models.OfferRecord) error {
	if record == nil {
		return fmt.Errorf("offer record is nil: %w", ErrInvalidInput)
	}
	return r.append(ctx, models.FormOffer, r.ranges.Offer, record.Row())
}

// AppendViewing records a viewing request
func (r *submissionRepository) AppendViewing(ctx context.Context, record *models.ViewingRecord) error {
	if record == nil {
		return fmt.Errorf("viewing record is nil: %w", ErrInvalidInput)
	}
	return r.append(ctx, models.FormViewing, r.ranges.Viewing, record.Row())
}

// AppendNDA records a confidentiality agreement acknowledgment
func (r *submissionRepository) AppendNDA(ctx context.Context, record *models.NDARecord) error {
	if record == nil {
		return fmt.Errorf("nda record is nil: %w", ErrInvalidInput)
	}
	return r.append(ctx, models.FormNDA, r.ranges.NDA, record.Row())
}

func (r *submissionRepository) append(ctx context.Context, kind models.FormKind, rng string, row []interface{}) error {
	if err := r.appender.Append(ctx, r.spreadsheetID, rng, row); err != nil {
		if isPermissionError(err) {
			r.logger.Error("spreadsheet rejected append, check sharing of the form spreadsheet",
				slog.String("form", string(kind)),
				slog.String("range", rng),
			)
		}
		return apperrors.Upstream("append "+rng, err)
	}
	r.logger.Debug("submission recorded",
		slog.String("form", string(kind)),
		slog.String("range", rng),
		slog.Int("columns", len(row)),
	)
	return nil
}
