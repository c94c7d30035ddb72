// Package ports declares what the quote service needs from the outside
// world: a quote store, a gender lookup, a cache for its answers, an event
// stream, feature flags, health checks and process statistics.
//
// Every method takes a context and reports failures with the domain errors,
// so the app layer never sees SQL, HTTP or Redis types.
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
)

// QuoteRepository persists priced quotes. Records are append-only.
type QuoteRepository interface {
	// Insert stores rec and returns it with the assigned ID and CreatedAt.
	// Concurrent inserts never share an ID and a failed insert leaves no row.
	Insert(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error)

	// GetByID returns the record with the given external id.
	// Returns domain.ErrNotFound for unknown or malformed ids.
	GetByID(ctx context.Context, id string) (domain.QuoteRecord, error)

	// List returns every record, newest first.
	List(ctx context.Context) ([]domain.QuoteRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}

// Gender is the answer of a name-to-gender lookup.
type Gender string

// Lookup answers.
const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = ""
)

// GenderLookup asks genderize.io, or a stand-in, for the likely gender of a
// first name. A name the service does not know yields GenderUnknown and no
// error; domain.ErrUnavailable means the service could not be asked.
type GenderLookup interface {
	LookupGender(ctx context.Context, name string) (Gender, error)
}

// EventPublisher emits quote events after a quote is stored. A publish
// failure is logged by the caller and never undoes the insert.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event is one message on the quote stream.
type Event interface {
	// EventType names the event, for example "quote.created".
	EventType() string

	// Key keeps events of one quote in one partition.
	Key() string

	// Payload is marshalled to JSON as the record value.
	Payload() any
}

// Cache keeps gender lookup answers keyed by normalized name.
type Cache interface {
	// Get returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for ttl; zero keeps it until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
