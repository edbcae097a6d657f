// Package session holds the per-principal token state produced by the
// authentication callbacks and its externally visible projection.
package session

// Token is the internal, server-side state for one authenticated principal.
// It is created on the first login exchange, mutated on refresh and
// destroyed (reset to the zero value) on sign-out.
type Token struct {
	// AccessToken is the third-party provider's access token, when the
	// principal signed in through OAuth.
	AccessToken string

	// AppToken is the bearer credential issued by the grading backend. It
	// embeds an expiration claim and carries the subscription marker.
	AppToken string

	// RefreshToken mints new app-token pairs. It must never leave
	// HTTP-only storage paths.
	RefreshToken string

	TokenType   string
	Provider    string
	ClassroomID string

	UserID string
	Email  string
	Name   string
	Image  string

	// Action is the pending signup-vs-login intent consumed from the
	// single-use cookie during an OAuth flow.
	Action string

	// Error carries non-fatal enrichment failures. The redirect decision
	// is the single place that turns it into user-visible behavior.
	Error string
}

// IsZero reports whether the token carries no state at all.
func (t Token) IsZero() bool {
	return t == Token{}
}

// User is the identity slice of a projected session.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Session is the externally visible projection of a Token.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	AppToken     string `json:"appToken,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
	Provider     string `json:"provider,omitempty"`
	ClassroomID  string `json:"classroomId,omitempty"`
	Action       string `json:"action,omitempty"`
	Error        string `json:"error,omitempty"`
}
