// Package geo resolves client IP addresses to ISO country codes using a
// local MaxMind database. Resolution is strictly best-effort: a missing
// database, a bad address, or a lookup miss all produce an empty code.
package geo

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// Resolver maps IP addresses to country codes.
type Resolver interface {
	Country(ip string) string
	Close() error
}

// NoopResolver returns an empty country for every address. Used when no
// database is configured.
type NoopResolver struct{}

var _ Resolver = (*NoopResolver)(nil)

func (NoopResolver) Country(string) string { return "" }
func (NoopResolver) Close() error          { return nil }

// MaxMindResolver resolves countries from a GeoLite2/GeoIP2 database file.
type MaxMindResolver struct {
	mu     sync.Mutex
	reader *geoip2.Reader
	logger *slog.Logger
}

var _ Resolver = (*MaxMindResolver)(nil)

// NewResolver opens the database at path. An empty path yields a
// NoopResolver rather than an error.
func NewResolver(path string, logger *slog.Logger) (Resolver, error) {
	if path == "" {
		return NoopResolver{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoip database %q: %w", path, err)
	}

	return &MaxMindResolver{
		reader: reader,
		logger: logger.With(slog.String("component", "geo")),
	}, nil
}

// Country returns the ISO 3166-1 alpha-2 code for ip, or "" when the
// address is unparsable or not in the database.
func (r *MaxMindResolver) Country(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reader == nil {
		return ""
	}

	record, err := r.reader.Country(parsed)
	if err != nil {
		r.logger.Debug("country lookup failed", slog.String("ip", ip), slog.String("error", err.Error()))
		return ""
	}
	return record.Country.IsoCode
}

func (r *MaxMindResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reader == nil {
		return nil
	}
	err := r.reader.Close()
	r.reader = nil
	return err
}
