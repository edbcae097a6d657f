package session

// Repo stores token state keyed by an opaque session id.
type Repo interface {
	Upsert(sessionID string, token Token) error
	Get(sessionID string) (Token, error)
	Delete(sessionID string) error
}
