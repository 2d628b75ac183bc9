package cache

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sportdata-cache/internal/cacheinfra"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

var (
	// ErrUpstreamFetch is matched by every failed facade call.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrPayloadShapeMismatch is returned when a payload's shape does not
	// belong to its declared category.
	ErrPayloadShapeMismatch = errors.New("payload shape mismatch")
	// ErrCacheItemNotFound is returned when an identifier did not resolve
	// after fetch and merge.
	ErrCacheItemNotFound = errors.New("cache item not found")
	// ErrConfiguration is matched by every ConfigError.
	ErrConfiguration = cacheinfra.ErrConfiguration
)

// ConfigError represents a configuration validation error.
type ConfigError = cacheinfra.ConfigError

// FetchError describes a failed facade call.
type FetchError struct {
	Op       string
	ID       string
	Language lang.Language
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s [%s]: %v", e.Op, e.ID, e.Language, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrUpstreamFetch, e.Err}
}

// NewFetchError wraps err, returning nil when err is nil.
func NewFetchError(op, id string, l lang.Language, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Op: op, ID: id, Language: l, Err: err}
}

// NotFoundError is returned when id could not be resolved. Err is the
// underlying mapping or fetch failure, if any.
type NotFoundError struct {
	ID  urn.URN
	Err error
}

func (e *NotFoundError) Error() string {
	if e.Err == nil {
		return "cache item " + e.ID.String() + " not found"
	}
	return "cache item " + e.ID.String() + " not found: " + e.Err.Error()
}

func (e *NotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCacheItemNotFound}
	}
	return []error{ErrCacheItemNotFound, e.Err}
}

// ShapeMismatch builds an ErrPayloadShapeMismatch error.
func ShapeMismatch(store string, c fmt.Stringer, p any) error {
	return fmt.Errorf("%w: %s got %T for %s", ErrPayloadShapeMismatch, store, p, c)
}

// ExceptionStrategy decides whether upstream failures reach the caller.
type ExceptionStrategy int

const (
	// Throw propagates failures to the caller.
	Throw ExceptionStrategy = iota
	// Catch logs failures and returns best effort data.
	Catch
)

func (s ExceptionStrategy) String() string {
	if s == Catch {
		return "catch"
	}
	return "throw"
}

// ParseExceptionStrategy accepts "throw" or "catch".
func ParseExceptionStrategy(v string) (ExceptionStrategy, error) {
	switch v {
	case "throw":
		return Throw, nil
	case "catch":
		return Catch, nil
	default:
		return Throw, &ConfigError{Field: "ExceptionStrategy", Message: fmt.Sprintf("unknown strategy %q", v)}
	}
}

func (s ExceptionStrategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ExceptionStrategy) UnmarshalText(b []byte) error {
	v, err := ParseExceptionStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Handle applies the strategy to err. Under Catch the error is logged at
// warn level and nil is returned.
func (s ExceptionStrategy) Handle(logger zerolog.Logger, err error, msg string) error {
	if err == nil {
		return nil
	}
	if s == Catch {
		logger.Warn().Err(err).Msg(msg)
		return nil
	}
	return err
}
