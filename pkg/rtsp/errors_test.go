package rtsp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRTSPError_Message(t *testing.T) {
	err := NewRTSPErrorWithContext(404, "DESCRIBE", "/missing")
	assert.Equal(t, "RTSP DESCRIBE /missing failed: 404 Not Found", err.Error())

	plain := &RTSPError{StatusCode: 503, Message: "Service Unavailable"}
	assert.Equal(t, "RTSP error 503: Service Unavailable", plain.Error())
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   string
	}{
		{200, "OK"},
		{401, "Unauthorized"},
		{454, "Session Not Found"},
		{551, "Option Not Supported"},
		{299, "Unknown Error 299"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorMessage(tt.statusCode))
		})
	}
}

func TestExchangeError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("%w: %w", ErrAuthenticationNotRequested, NewRTSPErrorWithContext(200, "DESCRIBE", "/"))
	err := &ExchangeError{Step: StepChallenge, Target: "1.2.3.4:554/", Err: inner}

	assert.ErrorIs(t, err, ErrAuthenticationNotRequested)
	assert.Contains(t, err.Error(), "1.2.3.4:554/")
	assert.Contains(t, err.Error(), "challenge")

	var rtspErr *RTSPError
	require.True(t, errors.As(err, &rtspErr))
	assert.Equal(t, 200, rtspErr.StatusCode)

	noTarget := &ExchangeError{Step: StepParse, Err: ErrInvalidURL}
	assert.Equal(t, "RTSP DESCRIBE (parse): invalid RTSP URL", noTarget.Error())
}

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, ResultSuccess},
		{&ExchangeError{Err: fmt.Errorf("%w: bad", ErrInvalidURL)}, ResultInvalidURL},
		{&ExchangeError{Err: ErrConnection}, ResultConnectionError},
		{&ExchangeError{Err: ErrAuthenticationNotRequested}, ResultAuthNotRequested},
		{&ExchangeError{Err: ErrMalformedChallenge}, ResultMalformedChallenge},
		{&ExchangeError{Err: ErrIO}, ResultIOError},
		{errors.New("other"), ResultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResultLabel(tt.err))
		})
	}
}
