// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionCreatedEvent is published when a matchmaking session is
// successfully created. It carries enough information for downstream
// consumers to log or run analytics without querying the primary
// database. The ranked film list itself is never persisted or shipped.
type SessionCreatedEvent struct {
	Initiator string   `json:"initiator"`
	Target    string   `json:"target"`
	Genres    []string `json:"genres"`
	FilmCount int      `json:"film_count"`
	CreatedAt string   `json:"created_at"`
}
