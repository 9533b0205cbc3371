package jwtx

// Signer signs claims with a single key.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)

	// VerificationKey is the key a verifier needs for tokens from this signer:
	// the shared secret for HMAC, the public key for EdDSA.
	VerificationKey() any

	Validate() error
}

// NewSignerHS256 creates an HMAC-SHA256 signer from a shared secret.
func NewSignerHS256(kid string, secret []byte) (Signer, error) {
	return newHS256Signer(kid, secret)
}

// NewEphemeralSignerEdDSA creates an EdDSA signer around a freshly generated
// Ed25519 key.
func NewEphemeralSignerEdDSA(kid string) (Signer, error) {
	return generateEdDSASigner(kid)
}
