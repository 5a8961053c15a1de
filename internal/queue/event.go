// Package queue defines the message payloads exchanged over the broker and
// the background consumer that turns them into an activity log.
package queue

// CatalogQueueName is the durable queue all catalog events flow through.
const CatalogQueueName = "catalog.events"

// Event types published by the service.
const (
	EventMovieCreated   = "movie.created"
	EventMovieUpdated   = "movie.updated"
	EventMovieDeleted   = "movie.deleted"
	EventWatchlistAdded = "watchlist.added"
)

// MovieEvent is published whenever the catalog changes. It carries enough
// context for downstream consumers to log or notify without querying the
// primary database.
type MovieEvent struct {
	Type       string `json:"type"`
	MovieID    int64  `json:"movie_id"`
	Title      string `json:"title"`
	Actor      string `json:"actor"`
	OccurredAt string `json:"occurred_at"`
}
