package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
	"github.com/welldanyogia/estate-intake-backend/internal/form"
	"github.com/welldanyogia/estate-intake-backend/internal/listing"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
	"github.com/welldanyogia/estate-intake-backend/internal/notify"
	"github.com/welldanyogia/estate-intake-backend/internal/repository"
	"github.com/welldanyogia/estate-intake-backend/internal/storage"
)

// Upload is a file received with a viewing request
type Upload struct {
	Filename string
	Content  io.Reader
}

// IntakeService defines the listing and submission operations behind the HTTP surface
type IntakeService interface {
	// Listings returns every listing from both sheets
	Listings(ctx context.Context) ([]models.Property, error)

	// ViewableListings returns the listings that accept viewing requests
	ViewableListings(ctx context.Context) ([]models.Property, error)

	// SubmitOffer records a purchase offer and acknowledges it to the applicant
	SubmitOffer(ctx context.Context, p form.Payload) error

	// SubmitViewing records a viewing request and notifies staff. upload may be nil.
	SubmitViewing(ctx context.Context, p form.Payload, upload *Upload) error

	// SubmitNDA records a confidentiality agreement and confirms it to the applicant
	SubmitNDA(ctx context.Context, p form.Payload) error
}

// IntakeConfig holds the collaborators of the intake service
type IntakeConfig struct {
	Listings    listing.ListingStore
	Policy      listing.Policy
	Normalizer  *form.Normalizer
	Submissions repository.SubmissionRepository
	Notifier    notify.Notifier
	Composer    *notify.Composer
	Storage     storage.FileStorage
	Logger      *slog.Logger
}

// intakeService implements IntakeService
type intakeService struct {
	listings    listing.ListingStore
	policy      listing.Policy
	normalizer  *form.Normalizer
	submissions repository.SubmissionRepository
	notifier    notify.Notifier
	composer    *notify.Composer
	storage     storage.FileStorage
	logger      *slog.Logger
}

// NewIntakeService creates a new IntakeService instance
func NewIntakeService(cfg IntakeConfig) IntakeService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	normalizer := cfg.Normalizer
	if normalizer == nil {
		normalizer = form.NewNormalizer(nil)
	}
	policy := cfg.Policy
	if policy == nil {
		policy = listing.ExactMarkerPolicy{Marker: listing.DefaultViewableMarker}
	}
	return &intakeService{
		listings:    cfg.Listings,
		policy:      policy,
		normalizer:  normalizer,
		submissions: cfg.Submissions,
		notifier:    cfg.Notifier,
		composer:    cfg.Composer,
		storage:     cfg.Storage,
		logger:      logger,
	}
}

// Listings returns every listing from both sheets
func (s *intakeService) Listings(ctx context.Context) ([]models.Property, error) {
	return s.listings.Fetch(ctx)
}

// ViewableListings returns the listings the configured policy admits
func (s *intakeService) ViewableListings(ctx context.Context) ([]models.Property, error) {
	props, err := s.listings.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Filter(props, s.policy), nil
}

// SubmitOffer records a purchase offer, then acknowledges it
func (s *intakeService) SubmitOffer(ctx context.Context, p form.Payload) error {
	rec, err := s.normalizer.Offer(p)
	if err != nil {
		return err
	}
	if err := s.submissions.AppendOffer(ctx, rec); err != nil {
		return err
	}

	msg, err := s.composer.OfferAcknowledgment(rec)
	s.notify(ctx, models.FormOffer, msg, err)
	return nil
}

// SubmitViewing stores the upload for the duration of the request, records
// the viewing request, then notifies staff with the upload attached. The
// upload is removed on every path out of this method.
func (s *intakeService) SubmitViewing(ctx context.Context, p form.Payload, upload *Upload) error {
	rec, err := s.normalizer.Viewing(p, "")
	if err != nil {
		return err
	}

	var att *models.Attachment
	if upload != nil {
		att, err = s.storage.SaveUpload(upload.Filename, upload.Content)
		if err != nil {
			return err
		}
		defer s.discard(att)
		rec.AttachmentName = att.Filename
	}

	if err := s.submissions.AppendViewing(ctx, rec); err != nil {
		return err
	}

	content, err := s.attachmentContent(att)
	if err != nil {
		s.notify(ctx, models.FormViewing, notify.Message{}, err)
		return nil
	}
	msg, err := s.composer.ViewingNotification(rec, content)
	s.notify(ctx, models.FormViewing, msg, err)
	return nil
}

// SubmitNDA records a confidentiality agreement, then confirms it
func (s *intakeService) SubmitNDA(ctx context.Context, p form.Payload) error {
	rec, err := s.normalizer.NDA(p)
	if err != nil {
		return err
	}
	if err := s.submissions.AppendNDA(ctx, rec); err != nil {
		return err
	}

	msg, err := s.composer.NDAConfirmation(rec)
	s.notify(ctx, models.FormNDA, msg, err)
	return nil
}

// notify sends msg unless composing it failed. Failures are logged and
// never returned: the ledger row is already written.
func (s *intakeService) notify(ctx context.Context, kind models.FormKind, msg notify.Message, composeErr error) {
	err := composeErr
	if err == nil {
		err = s.notifier.Send(ctx, msg)
	}
	if err == nil {
		return
	}
	if !apperrors.IsNotificationFailed(err) {
		err = apperrors.Notification(err)
	}
	s.logger.Warn("notification failed after submission was recorded",
		slog.String("form", string(kind)),
		slog.String("code", apperrors.GetErrorCode(err)),
		slog.Any("error", err),
	)
}

func (s *intakeService) attachmentContent(att *models.Attachment) (*notify.Attachment, error) {
	if att == nil {
		return nil, nil
	}
	rc, err := s.storage.Get(att.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &notify.Attachment{
		Filename:    att.Filename,
		ContentType: att.ContentType,
		Content:     content,
	}, nil
}

func (s *intakeService) discard(att *models.Attachment) {
	if err := s.storage.Delete(att.FilePath); err != nil {
		s.logger.Error("failed to delete upload",
			slog.String("path", att.FilePath),
			slog.Any("error", err),
		)
	}
}
