package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
)

// Response statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// User-facing messages
const (
	MsgRoot             = "Hello from the property intake API!"
	MsgListings         = "在庫一覧を取得しました"
	MsgViewableListings = "在庫一覧(内見可)を取得しました"
	MsgRecorded         = "データを記録しました"
	MsgNoFormData       = "フォームデータがありません"
	MsgUploadRejected   = "アップロードされたファイルを受け付けられませんでした"
	MsgNotRecorded      = "サーバーエラーが発生しました。データは記録されていません"
	MsgListingsFailed   = "在庫一覧を取得できませんでした"
	MsgInternalError    = "サーバーエラーが発生しました"
	MsgTooManyRequests  = "リクエストが多すぎます。しばらくしてから再度お試しください"
)

// APIResponse is the envelope of every response
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ListingResponse carries a property list
type ListingResponse struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Properties []models.Property `json:"properties"`
}

// Success returns a 200 response with a message
func Success(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  StatusSuccess,
		Message: message,
	})
}

// Listings returns a 200 response with properties. A nil slice is sent as [].
func Listings(c echo.Context, message string, props []models.Property) error {
	if props == nil {
		props = []models.Property{}
	}
	return c.JSON(http.StatusOK, ListingResponse{
		Status:     StatusSuccess,
		Message:    message,
		Properties: props,
	})
}

// ListingsError returns a 500 response with an empty property list
func ListingsError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, ListingResponse{
		Status:     StatusError,
		Message:    MsgListingsFailed,
		Properties: []models.Property{},
	})
}

// Error returns an error response with appropriate status code. Only
// messages written for users are passed through; everything else gets a
// generic message for its code.
func Error(c echo.Context, err error) error {
	code := apperrors.GetErrorCode(err)
	return c.JSON(getHTTPStatus(code), APIResponse{
		Status:  StatusError,
		Message: userMessage(code, err),
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, APIResponse{
		Status:  StatusError,
		Message: message,
	})
}

// TooManyRequests returns a 429 response
func TooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, APIResponse{
		Status:  StatusError,
		Message: MsgTooManyRequests,
	})
}

// InternalError returns a 500 Internal Server Error response
func InternalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, APIResponse{
		Status:  StatusError,
		Message: MsgInternalError,
	})
}

func userMessage(code string, err error) string {
	switch code {
	case apperrors.CodeInvalidSubmission, apperrors.CodeUploadRejected:
		if appErr, ok := asAppError(err); ok && appErr.Message != "" {
			return appErr.Message
		}
		if code == apperrors.CodeUploadRejected {
			return MsgUploadRejected
		}
		return MsgNoFormData
	case apperrors.CodeUpstreamUnavailable:
		return MsgNotRecorded
	default:
		return MsgInternalError
	}
}

func asAppError(err error) (*apperrors.AppError, bool) {
	var appErr *apperrors.AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// getHTTPStatus maps error codes to HTTP status codes
func getHTTPStatus(code string) int {
	switch code {
	case apperrors.CodeInvalidSubmission:
		return http.StatusBadRequest
	case apperrors.CodeUploadRejected:
		return http.StatusBadRequest
	case apperrors.CodeUpstreamUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
