package httptransport

// Session holds the session identifier issued by the remote endpoint.
//
// The zero value is an empty session, with no identifier. Once an identifier
// has been set it is never cleared, only replaced by a newer one.
//
// A Session is not safe for concurrent use. Exchanges that share a session are
// expected to be performed sequentially.
type Session struct {
	id string
}

// ID returns the session identifier.
//
// ok is false if the endpoint has not yet issued an identifier.
func (s *Session) ID() (id string, ok bool) {
	return s.id, s.id != ""
}

// Update replaces the session identifier with id.
//
// An empty id is ignored. It returns true if the identifier changed.
func (s *Session) Update(id string) bool {
	if id == "" || id == s.id {
		return false
	}

	s.id = id
	return true
}
