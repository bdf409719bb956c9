package rtsp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL indicates the RTSP URL is invalid
	ErrInvalidURL = errors.New("invalid RTSP URL")
	// ErrConnection indicates the TCP connection to the RTSP server could not be established
	ErrConnection = errors.New("failed to connect to RTSP server")
	// ErrAuthenticationNotRequested indicates the first response carried no 401 challenge
	ErrAuthenticationNotRequested = errors.New("server did not request authentication")
	// ErrMalformedChallenge indicates the Digest challenge or its realm/nonce is missing
	ErrMalformedChallenge = errors.New("malformed Digest challenge")
	// ErrIO indicates a send or receive failure on an established connection
	ErrIO = errors.New("RTSP I/O error")
)

// Exchange steps reported by ExchangeError
const (
	StepParse     = "parse"
	StepConnect   = "connect"
	StepSend      = "send"
	StepReceive   = "receive"
	StepChallenge = "challenge"
)

// ExchangeError reports which step of a DESCRIBE exchange failed
type ExchangeError struct {
	Step   string
	Target string
	Err    error
}

// Error implements the error interface
func (e *ExchangeError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("RTSP DESCRIBE %s (%s): %v", e.Target, e.Step, e.Err)
	}
	return fmt.Sprintf("RTSP DESCRIBE (%s): %v", e.Step, e.Err)
}

// Unwrap returns the underlying error so errors.Is matches the sentinels
func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// RTSPError represents an RTSP status returned by the server
type RTSPError struct {
	StatusCode int
	Message    string
	Method     string // RTSP method that caused the error
	URL        string // request URI
}

// Error implements the error interface
func (e *RTSPError) Error() string {
	if e.Method != "" && e.URL != "" {
		return fmt.Sprintf("RTSP %s %s failed: %d %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("RTSP error %d: %s", e.StatusCode, e.Message)
}

// NewRTSPErrorWithContext creates a new RTSP error with method and URL context
func NewRTSPErrorWithContext(statusCode int, method, url string) *RTSPError {
	return &RTSPError{
		StatusCode: statusCode,
		Message:    GetErrorMessage(statusCode),
		Method:     method,
		URL:        url,
	}
}

var reasonPhrases = map[int]string{
	100: "Continue",

	200: "OK",

	301: "Moved Permanently",
	302: "Moved Temporarily",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",

	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Request Entity Too Large",
	414: "Request-URI Too Long",
	415: "Unsupported Media Type",
	451: "Parameter Not Understood",
	452: "Conference Not Found",
	453: "Not Enough Bandwidth",
	454: "Session Not Found",
	455: "Method Not Valid in This State",
	456: "Header Field Not Valid for Resource",
	457: "Invalid Range",
	458: "Parameter Is Read-Only",
	459: "Aggregate Operation Not Allowed",
	460: "Only Aggregate Operation Allowed",
	461: "Unsupported Transport",
	462: "Destination Unreachable",

	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "RTSP Version Not Supported",
	551: "Option Not Supported",
}

// GetErrorMessage returns the standard reason phrase for an RTSP status code
func GetErrorMessage(statusCode int) string {
	if msg, ok := reasonPhrases[statusCode]; ok {
		return msg
	}
	return fmt.Sprintf("Unknown Error %d", statusCode)
}

// Result labels used for metrics and logging
const (
	ResultSuccess            = "success"
	ResultInvalidURL         = "invalid_url"
	ResultConnectionError    = "connection_error"
	ResultAuthNotRequested   = "auth_not_requested"
	ResultMalformedChallenge = "malformed_challenge"
	ResultIOError            = "io_error"
	ResultUnknown            = "unknown"
)

// ResultLabel classifies an exchange outcome into a short label
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrInvalidURL):
		return ResultInvalidURL
	case errors.Is(err, ErrConnection):
		return ResultConnectionError
	case errors.Is(err, ErrAuthenticationNotRequested):
		return ResultAuthNotRequested
	case errors.Is(err, ErrMalformedChallenge):
		return ResultMalformedChallenge
	case errors.Is(err, ErrIO):
		return ResultIOError
	default:
		return ResultUnknown
	}
}
