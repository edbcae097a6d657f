package flowstate

import "time"

// State is the per-flow secret material created when an OAuth sign-in
// starts and consumed exactly once by the callback.
type State struct {
	Provider     string
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, flowState *State) error
	Get(state string) (*State, error)
	Delete(state string) error
}
