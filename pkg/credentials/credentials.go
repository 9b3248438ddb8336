// Package credentials holds the secrets backends authenticate with.
//
// One value type covers every backend family: object stores consume the
// key fields, SSH-based backends the username/password or private key
// fields. Unused fields stay empty.
package credentials

import "context"

// Credentials carries backend authentication material.
type Credentials struct {
	// AccessKeyID and SecretAccessKey authenticate against object
	// stores. SessionToken is set for temporary credentials only.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Username and Password authenticate interactive protocols (SFTP).
	Username string
	Password string

	// PrivateKeyPEM is a PEM-encoded private key for key-based SSH
	// authentication. Takes precedence over Password when set.
	PrivateKeyPEM []byte
}

// HasKeyPair reports whether object-store key material is present.
func (c Credentials) HasKeyPair() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Provider resolves credentials at connection time. Implementations may
// read from configuration, the environment, or an external store.
type Provider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// Static is a Provider returning fixed credentials, typically sourced
// from configuration.
type Static struct {
	Credentials Credentials
}

func (s Static) Retrieve(ctx context.Context) (Credentials, error) {
	return s.Credentials, nil
}
