package engine

import "trivia-quiz/internal/domain"

// Store is the durable persistence port for the three process-wide slots:
// the active session, the last-used options and the upstream token.
//
// Loads return ok=false for both "absent" and "unreadable" records: corrupt
// local state is logged by the implementation and treated as absent, never
// propagated. Saves serialize the whole entity in one write, so the last
// writer wins without partial interleaving.
type Store interface {
	LoadSession() (domain.Session, bool)
	SaveSession(domain.Session) error
	ClearSession() error

	LoadOptions() (domain.Options, bool)
	SaveOptions(domain.Options) error

	LoadToken() (string, bool)
	SaveToken(string) error
	ClearToken() error
}
