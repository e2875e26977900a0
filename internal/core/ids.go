package core

import "strconv"

// SessionID identifies one connected client for the lifetime of its connection.
type SessionID string

// RoomID identifies a room.
type RoomID string

const maxIssueAttempts = 16

// issuer hands out identifiers and never hands out the same one twice.
// Registry and Directory share one issuer so session and room ids cannot overlap.
//
// Every issued id stays in issued for the life of the process, including ids of
// closed sessions and deleted rooms, so memory grows by one entry per session
// or room ever created. Room ids are short UUID prefixes and can collide.
type issuer struct {
	issued map[string]struct{}
	seq    uint64
}

func newIssuer() *issuer {
	return &issuer{issued: make(map[string]struct{})}
}

func (i *issuer) issue(gen func() string) string {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		if id := gen(); i.claim(id) {
			return id
		}
	}

	// The generator keeps colliding; disambiguate with a local sequence.
	for {
		i.seq++
		if id := gen() + "-" + strconv.FormatUint(i.seq, 10); i.claim(id) {
			return id
		}
	}
}

func (i *issuer) claim(id string) bool {
	if id == "" {
		return false
	}
	if _, dup := i.issued[id]; dup {
		return false
	}
	i.issued[id] = struct{}{}
	return true
}
