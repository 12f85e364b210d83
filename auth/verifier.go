package auth

import (
	"net/http"
	"strings"

	"group-chat/domain"
	"group-chat/errors"
	"group-chat/repositories"
)

// Verifier resolves a bearer credential to a user identity. It is a pure
// function of its collaborators and keeps no state of its own.
type Verifier struct {
	users repositories.IUserRepository
}

func NewVerifier(users repositories.IUserRepository) *Verifier {
	return &Verifier{users: users}
}

// ExtractToken applies the credential preference order: an explicit "token"
// query parameter first, then a standard "Authorization: Bearer" header.
func ExtractToken(r *http.Request) (string, error) {
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return "", errors.ErrMissingToken
	}

	parts := strings.Fields(authorization)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1], nil
	}
	return "", errors.ErrMissingToken
}

// Verify validates the token and resolves its subject to an existing user.
// Any failure, signature, expiry or unknown subject, collapses into
// ErrInvalidToken so the handshake reply never leaks which check failed.
func (v *Verifier) Verify(token string) (domain.User, error) {
	claims, err := ValidateToken(token)
	if err != nil || claims.Subject == "" {
		return domain.User{}, errors.ErrInvalidToken
	}

	user, err := v.users.GetUserByUsername(claims.Subject)
	if err != nil {
		return domain.User{}, errors.ErrInvalidToken
	}
	return user, nil
}
