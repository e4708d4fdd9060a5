package datastore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/coreybb/itemgate/models"
)

// itemsCollection is the collection (or table) every source reads from.
const itemsCollection = "items"

var (
	// ErrConnect indicates the source could not be reached.
	ErrConnect = errors.New("connection failed")
	// ErrQuery indicates the source was reached but the items query failed.
	ErrQuery = errors.New("query failed")
	// ErrUnsupportedScheme indicates a source URL whose scheme has no implementation.
	ErrUnsupportedScheme = errors.New("unsupported source URL scheme")
)

// Source is one backend that items are fetched from.
//
// Every call to FetchItems is a complete fetch: it opens its own connection,
// reads all items and releases the connection before returning, whether or
// not the read succeeded. Implementations hold no connection between calls.
type Source interface {
	Name() string
	FetchItems(ctx context.Context) ([]models.Item, error)
}

// SourceError records which source and which step of a fetch failed.
type SourceError struct {
	Source string
	Op     string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func connectError(source string, cause error) error {
	return &SourceError{Source: source, Op: "connect", Err: fmt.Errorf("%w: %w", ErrConnect, cause)}
}

func queryError(source string, cause error) error {
	return &SourceError{Source: source, Op: "find", Err: fmt.Errorf("%w: %w", ErrQuery, cause)}
}

// NewSource builds the Source implementation matching the URL scheme.
func NewSource(name, rawURL string) (Source, error) {
	switch scheme := urlScheme(rawURL); scheme {
	case "mongodb", "mongodb+srv":
		return NewMongoSource(name, rawURL)
	case "postgres", "postgresql":
		return NewSQLSource(name, rawURL), nil
	default:
		return nil, fmt.Errorf("%w %q for source %s", ErrUnsupportedScheme, scheme, name)
	}
}

// SupportedScheme reports whether NewSource can build a source for rawURL.
func SupportedScheme(rawURL string) bool {
	switch urlScheme(rawURL) {
	case "mongodb", "mongodb+srv", "postgres", "postgresql":
		return true
	}
	return false
}

func urlScheme(rawURL string) string {
	scheme, _, found := strings.Cut(rawURL, "://")
	if !found {
		return ""
	}
	return scheme
}

// redactURL hides credentials so connection strings can be logged.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return urlScheme(rawURL) + "://<unparseable>"
	}
	return u.Redacted()
}
