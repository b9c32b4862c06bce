package service

import "github.com/google/uuid"

// VisitorResolver decides whether a request belongs to a first-time visitor.
//
// There is no server-side registry of issued tokens: a request with no token
// is a new visitor, a request with one is returning. Unique-visitor counts
// are therefore only as reliable as the client's willingness to retain the
// token. Windowed uniqueness is derived later by counting distinct tokens in
// the event log; this boolean only governs the write-time counter.
type VisitorResolver struct{}

// Resolve mints a fresh token when none was supplied, otherwise echoes the
// supplied token back unchanged.
func (VisitorResolver) Resolve(token string) (isNew bool, resolved string) {
	if token == "" {
		return true, uuid.New().String()
	}
	return false, token
}
