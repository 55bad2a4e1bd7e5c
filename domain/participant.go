// Package domain contains core concepts of the chat room.
// This file defines Participant entities and presence rules.
// No storage, network, or runtime logic should be added here.
package domain

import "time"

// Participant is someone currently present in the room, identified by Name.
type Participant struct {
	Name     string
	LastSeen time.Time
}

// IsStale reports whether the participant was last seen strictly before cutoff.
func (p Participant) IsStale(cutoff time.Time) bool {
	return p.LastSeen.Before(cutoff)
}
