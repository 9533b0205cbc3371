package jwtx

import (
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

type verificationKey struct {
	alg string
	key any
}

// KeySet maps key ids to verification keys. It is safe for concurrent use.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]verificationKey
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]verificationKey)}
}

// AddSigner registers the verification key of s under its kid.
func (k *KeySet) AddSigner(s Signer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.KID() == "" {
		return errors.New("jwtx: signer has empty kid")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[s.KID()] = verificationKey{alg: s.Alg(), key: s.VerificationKey()}
	return nil
}

// Get returns the algorithm and key registered for kid.
func (k *KeySet) Get(kid string) (string, any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if vk, ok := k.keys[kid]; ok {
		return vk.alg, vk.key, nil
	}
	return "", nil, ErrNoKey
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}
