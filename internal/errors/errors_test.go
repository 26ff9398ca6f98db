package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppError_CreatesErrorWithCorrectFields(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "custom message", CodeInvalidSubmission)

	assert.Equal(t, baseErr, appErr.Err)
	assert.Equal(t, "custom message", appErr.Message)
	assert.Equal(t, CodeInvalidSubmission, appErr.Code)
}

func TestAppError_Error_ReturnsMessage(t *testing.T) {
	appErr := NewAppError(errors.New("base error"), "custom message", CodeInvalidSubmission)

	assert.Equal(t, "custom message", appErr.Error())
}

func TestAppError_Error_ReturnsBaseErrorWhenNoMessage(t *testing.T) {
	appErr := NewAppError(errors.New("base error"), "", CodeInvalidSubmission)

	assert.Equal(t, "base error", appErr.Error())
}

func TestAppError_Unwrap_ReturnsWrappedError(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "custom message", CodeInvalidSubmission)

	assert.Equal(t, baseErr, appErr.Unwrap())
}

func TestWrap_WrapsErrorWithContext(t *testing.T) {
	wrapped := Wrap(errors.New("base error"), "context")

	assert.Contains(t, wrapped.Error(), "context")
	assert.Contains(t, wrapped.Error(), "base error")
}

func TestWrap_ReturnsNilForNilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Upstream("append", nil))
	assert.Nil(t, Notification(nil))
}

func TestUpstream_KeepsCauseAndSentinel(t *testing.T) {
	cause := errors.New("googleapi: Error 503")
	err := Upstream("append 買付申込フォーム管理表!C:S", cause)

	assert.True(t, IsUpstreamUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "買付申込フォーム管理表!C:S")
}

func TestNotification_KeepsCauseAndSentinel(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Notification(cause)

	assert.True(t, IsNotificationFailed(err))
	assert.False(t, IsUpstreamUnavailable(err))
	assert.ErrorIs(t, err, cause)
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid submission", ErrInvalidSubmission, CodeInvalidSubmission},
		{"invalid submission helper", InvalidSubmission("missing %s", "body"), CodeInvalidSubmission},
		{"upload rejected helper", UploadRejected("too large"), CodeUploadRejected},
		{"wrapped upload rejected", Wrap(ErrUploadRejected, "imgFile"), CodeUploadRejected},
		{"upstream", Upstream("get", errors.New("boom")), CodeUpstreamUnavailable},
		{"notification", Notification(errors.New("boom")), CodeNotificationFailed},
		{"app error code wins", NewAppError(errors.New("x"), "", CodeUpstreamUnavailable), CodeUpstreamUnavailable},
		{"unknown", errors.New("other"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(tt.err))
		})
	}
}
