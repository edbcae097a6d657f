package backendapi

import "encoding/json"

// Envelope is the response wrapper used by every backend endpoint:
// {success, data?, message?}.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SignInResult is the payload of POST /api/auth/signin.
type SignInResult struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Name         string `json:"name"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ClassroomID  string `json:"classroomId"`
}

// OAuthRequest identifies a third-party provider account to the backend.
type OAuthRequest struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// OAuthUser is the user record returned by the identity exchange.
type OAuthUser struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullName prefers the split first/last fields and falls back to the
// single display name.
func (u OAuthUser) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Name
}

// OAuthResult is the payload of POST /api/auth/oauth.
type OAuthResult struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ClassroomID  string    `json:"classroomId"`
	User         OAuthUser `json:"user"`
}

// RefreshResult is the payload of POST /api/auth/refresh.
type RefreshResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ClassroomID  string `json:"classroomId"`
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Name         string `json:"name"`
}

// AuthUser is the user record returned by the simple login/signup endpoints.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResult is the payload of POST /api/auth/login and /api/auth/signup,
// which do not use the standard envelope: {user, token} or {error}.
type AuthResult struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
	Error string   `json:"error,omitempty"`
}
