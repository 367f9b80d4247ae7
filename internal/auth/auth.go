// Package auth defines the authentication contracts shared by the token
// service, the HTTP middleware, and the handlers: the Role enum, the
// per-request Identity, and the TokenVerifier interface.
package auth

// Identity is the authenticated principal attached to a request.
// It is decoded entirely from the bearer token; no store lookup is involved,
// so it reflects the account state at token issuance time.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// TokenVerifier validates a bearer token string and returns the identity it
// carries. Middleware depends on this interface rather than a concrete
// implementation.
//
// Verification must be a pure function of (token, current time, key
// material): implementations never consult account state.
type TokenVerifier interface {
	VerifyToken(token string) (*Identity, error)
}

// TokenVerifierFunc adapts an ordinary function to the TokenVerifier interface.
type TokenVerifierFunc func(token string) (*Identity, error)

// VerifyToken implements TokenVerifier.
func (f TokenVerifierFunc) VerifyToken(token string) (*Identity, error) {
	return f(token)
}

// TokenIssuer creates a signed bearer token for an identity.
type TokenIssuer interface {
	IssueToken(id Identity) (string, error)
}
