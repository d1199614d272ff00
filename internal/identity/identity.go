// Package identity holds the verified caller identity consumed from the auth
// boundary, and the policy that decides what an identity may do.
//
// The core never issues or validates credentials. By the time an Identity
// exists, the token has already been verified upstream.
package identity

type Identity struct {
	// Stable identifier of the caller, stringified from the auth subject.
	SubjectID string
	Email     string
	Role      string
}

// IsZero reports whether the identity carries no subject.
func (id Identity) IsZero() bool {
	return id.SubjectID == ""
}
