package domain

import (
	"errors"
	"strconv"
)

var (
	// ErrNotConnected is returned when a write is attempted without a live connection. Retriable.
	ErrNotConnected = errors.New("websocket not connected")

	// ErrUnauthorized is returned when the gateway refuses the websocket handshake.
	ErrUnauthorized = errors.New("gateway refused credentials")

	// ErrMalformedMessage is returned when a wire message cannot be mapped to an event.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrRejected is returned when the exchange rejects a subscription or request.
	ErrRejected = errors.New("rejected by exchange")

	// ErrUnknownCurrency is returned for a base currency with no tradable pair.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrMissingSecret is returned when live trading is configured without an API secret.
	ErrMissingSecret = errors.New("api secret not found")
)

// RetriableError is implemented by errors that know whether reconnecting can help.
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable reports whether any error in err's chain is a RetriableError that allows a retry.
// Unclassified errors are not retriable.
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError is a failure on the gateway websocket.
type NetworkError struct {
	Op     string // "dial", "auth", "subscribe", "write"
	Status int    // HTTP status of a failed handshake, 0 otherwise
	Err    error
	Fatal  bool
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return e.Op + " (status " + strconv.Itoa(e.Status) + "): " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool { return !e.Fatal }

func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetworkError wraps a transient transport failure.
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}

// NewFatalNetworkError wraps a failure that reconnecting cannot fix.
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Fatal: true}
}

// NewHandshakeError classifies a refused websocket upgrade by its HTTP status.
// 401 and 403 mean the token or origin was refused and are fatal.
func NewHandshakeError(status int, err error) *NetworkError {
	ne := &NetworkError{Op: "dial", Status: status, Err: err}
	if status == 401 || status == 403 {
		ne.Err = errors.Join(ErrUnauthorized, err)
		ne.Fatal = true
	}
	return ne
}

// ConfigError is an invalid setting. Never retriable.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool { return false }

func (e *ConfigError) Unwrap() error { return e.Err }
