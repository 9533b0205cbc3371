package jwtx

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/scribe/pkg/cryptox"
)

// Supported signing algorithms.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmEdDSA = "EdDSA"
)

// KeyManager owns the signing key and verifier for exactly one token
// purpose.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	purpose Purpose
	issuer  string
	signer  Signer
}

// KeyManagerOptions configures a KeyManager.
type KeyManagerOptions struct {
	Purpose Purpose
	Issuer  string

	// Secret selects HS256 when set. When empty an ephemeral Ed25519 key is
	// generated and tokens die with the process.
	Secret []byte

	Leeway time.Duration
}

// NewKeyManager builds the signer, key set and verifier for one purpose.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}
	if !opts.Purpose.Valid() {
		return nil, fmt.Errorf("jwtx: unknown purpose %q", opts.Purpose)
	}

	var (
		signer Signer
		err    error
	)
	if len(opts.Secret) > 0 {
		// Stable kid per secret so replicas sharing a secret agree.
		kid := fmt.Sprintf("%s-%s", opts.Purpose, cryptox.FingerprintToken(string(opts.Secret))[:12])
		signer, err = NewSignerHS256(kid, opts.Secret)
	} else {
		signer, err = newEphemeralEdDSASigner(opts.Purpose)
	}
	if err != nil {
		return nil, fmt.Errorf("jwtx: %s signer: %w", opts.Purpose, err)
	}

	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: %s keyset: %w", opts.Purpose, err)
	}

	return &KeyManager{
		Verifier: NewVerifier(keyset, VerifyOptions{
			Issuer:  opts.Issuer,
			Purpose: opts.Purpose,
			Leeway:  opts.Leeway,
		}),
		KeySet:  keyset,
		purpose: opts.Purpose,
		issuer:  opts.Issuer,
		signer:  signer,
	}, nil
}

func newEphemeralEdDSASigner(purpose Purpose) (Signer, error) {
	suffix, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}
	return NewEphemeralSignerEdDSA(fmt.Sprintf("%s-%s", purpose, suffix))
}

func (km *KeyManager) Purpose() Purpose  { return km.purpose }
func (km *KeyManager) Algorithm() string { return km.signer.Alg() }
func (km *KeyManager) IsReady() bool     { return km.KeySet.IsReady() }

// Issue signs a token for subject that expires ttl after now.
func (km *KeyManager) Issue(subject string, ttl time.Duration, now time.Time) (string, Claims, error) {
	if subject == "" {
		return "", Claims{}, fmt.Errorf("jwtx: empty subject")
	}
	if ttl <= 0 {
		return "", Claims{}, fmt.Errorf("jwtx: ttl must be positive")
	}

	claims := NewClaims(subject, km.purpose, km.issuer, ttl, now)
	token, err := km.signer.Sign(claims)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign %s token: %w", km.purpose, err)
	}
	return token, claims, nil
}

// Verify checks token against this manager's key and purpose.
func (km *KeyManager) Verify(token string) (Claims, error) {
	return km.Verifier.Verify(token)
}
