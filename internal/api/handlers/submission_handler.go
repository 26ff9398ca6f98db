package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/estate-intake-backend/internal/api/response"
	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
	"github.com/welldanyogia/estate-intake-backend/internal/form"
	"github.com/welldanyogia/estate-intake-backend/internal/logger"
	"github.com/welldanyogia/estate-intake-backend/internal/services"
)

// UploadField is the multipart field carrying the viewing request's ID document
const UploadField = "imgFile"

// SubmissionHandler handles form submission HTTP requests
type SubmissionHandler struct {
	svc    services.IntakeService
	secLog *logger.SecurityLogger
	logger *slog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(svc services.IntakeService, l *slog.Logger) *SubmissionHandler {
	if l == nil {
		l = slog.Default()
	}
	return &SubmissionHandler{
		svc:    svc,
		secLog: logger.FromLogger(l),
		logger: l,
	}
}

// SendOffer handles POST /send_kaitsuke
func (h *SubmissionHandler) SendOffer(c echo.Context) error {
	p, err := readPayload(c)
	if err != nil {
		return h.fail(c, "kaitsuke", err)
	}
	if err := h.svc.SubmitOffer(c.Request().Context(), p); err != nil {
		return h.fail(c, "kaitsuke", err)
	}
	return response.Success(c, response.MsgRecorded)
}

// SendViewing handles POST /send_naiken. The body is multipart with an
// optional imgFile part, or JSON / URL-encoded without a file.
func (h *SubmissionHandler) SendViewing(c echo.Context) error {
	if !isMultipart(c.Request()) {
		p, err := readPayload(c)
		if err != nil {
			return h.fail(c, "naiken", err)
		}
		if err := h.svc.SubmitViewing(c.Request().Context(), p, nil); err != nil {
			return h.fail(c, "naiken", err)
		}
		return response.Success(c, response.MsgRecorded)
	}

	mf, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			h.secLog.UploadRejected(c.RealIP(), "", "request body too large")
		}
		return h.fail(c, "naiken", bodyError(err))
	}
	defer mf.RemoveAll()

	var upload *services.Upload
	if files := mf.File[UploadField]; len(files) > 0 && files[0].Filename != "" {
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return h.fail(c, "naiken", err)
		}
		defer f.Close()
		upload = &services.Upload{Filename: fh.Filename, Content: f}
	}

	err = h.svc.SubmitViewing(c.Request().Context(), form.PayloadFromForm(mf.Value), upload)
	if err != nil {
		if apperrors.IsUploadRejected(err) && upload != nil {
			h.secLog.UploadRejected(c.RealIP(), upload.Filename, err.Error())
		}
		return h.fail(c, "naiken", err)
	}
	return response.Success(c, response.MsgRecorded)
}

// SendNDA handles POST /send_ca
func (h *SubmissionHandler) SendNDA(c echo.Context) error {
	p, err := readPayload(c)
	if err != nil {
		return h.fail(c, "ca", err)
	}
	if err := h.svc.SubmitNDA(c.Request().Context(), p); err != nil {
		return h.fail(c, "ca", err)
	}
	return response.Success(c, response.MsgRecorded)
}

func (h *SubmissionHandler) fail(c echo.Context, kind string, err error) error {
	code := apperrors.GetErrorCode(err)
	attrs := []any{
		slog.String("form", kind),
		slog.String("code", code),
		slog.Any("error", err),
	}
	switch code {
	case apperrors.CodeInvalidSubmission, apperrors.CodeUploadRejected:
		h.logger.Warn("submission rejected", attrs...)
	default:
		h.logger.Error("submission failed", attrs...)
	}
	return response.Error(c, err)
}

// readPayload decodes a JSON, URL-encoded or multipart body
func readPayload(c echo.Context) (form.Payload, error) {
	req := c.Request()
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))

	switch {
	case mediaType == echo.MIMEApplicationForm:
		values, err := c.FormParams()
		if err != nil {
			return nil, bodyError(err)
		}
		return form.PayloadFromForm(values), nil
	case strings.HasPrefix(mediaType, "multipart/"):
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, bodyError(err)
		}
		defer mf.RemoveAll()
		return form.PayloadFromForm(mf.Value), nil
	default:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, bodyError(err)
		}
		return form.PayloadFromJSON(body)
	}
}

// bodyError maps a failure to read or parse the request body. A body cut
// off by the size limit while streaming is an oversized upload, not a
// missing form.
func bodyError(err error) error {
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return apperrors.UploadRejected(response.MsgUploadRejected)
	}
	return apperrors.InvalidSubmission(response.MsgNoFormData)
}

func isMultipart(req *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	return strings.HasPrefix(mediaType, "multipart/")
}
