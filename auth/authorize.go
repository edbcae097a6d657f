package auth

import (
	"context"

	"github.com/gradeflow/session-gateway/backendapi"
	errs "github.com/gradeflow/session-gateway/internal/errors"
)

// AuthorizedUser is the result of a successful credential exchange.
type AuthorizedUser struct {
	User
	AppToken     string
	RefreshToken string
	ClassroomID  string
}

// Authorize exchanges credentials for an application identity. Empty fields
// are rejected before any network call; backend rejections surface the
// backend's own message so the login form can display it.
func (o *Orchestrator) Authorize(ctx context.Context, email, password string) (*AuthorizedUser, error) {
	if email == "" || password == "" {
		return nil, errs.ErrMissingCredentials
	}

	result, err := o.backend.SignIn(ctx, email, password)
	if err != nil {
		o.log.Warn().Err(err).Str("email", email).Msg("credential sign-in rejected")
		return nil, err
	}

	return &AuthorizedUser{
		User: User{
			ID:    result.UserID,
			Email: result.Email,
			Name:  fullName(result),
		},
		AppToken:     result.Token,
		RefreshToken: result.RefreshToken,
		ClassroomID:  result.ClassroomID,
	}, nil
}

func fullName(r *backendapi.SignInResult) string {
	if r.FirstName != "" && r.LastName != "" {
		return r.FirstName + " " + r.LastName
	}
	return r.Name
}
