package session

import "context"

// Credential is a set of HTTP headers of an authenticated API session.
// It is saved to the session file as `{"headers": {...}}`.
type Credential struct {
	Headers map[string]string `json:"headers"`
}

// NewCredential creates a Credential with one header.
func NewCredential(header, token string) Credential {
	return Credential{Headers: map[string]string{header: token}}
}

// IsEmpty is true if there are no non-empty headers.
func (c Credential) IsEmpty() bool {
	for _, v := range c.Headers {
		if v != "" {
			return false
		}
	}
	return true
}

// Provider gives a valid session for privileged API calls.
type Provider interface {
	// Session returns a cached credential if the API still accepts it, or
	// logs in and caches a new one.
	Session(ctx context.Context) (Credential, error)
}

// Authenticator is the part of the API that deals with sessions.
type Authenticator interface {
	// Login receives a new credential for user and password.
	Login(ctx context.Context, user, password string) (Credential, error)

	// Me checks if the API accepts a credential.
	Me(ctx context.Context, cred Credential) error
}
