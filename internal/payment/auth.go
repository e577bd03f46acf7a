package payment

import (
	"crypto/ed25519"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// Authorization is proof that an identity signed off on an operation. The
// engine checks the handle instead of re-validating raw accounts, so both
// transport adapters share one settlement path.
type Authorization struct {
	signer   pda.Address
	verified bool
}

// Signer returns the proven identity.
func (a Authorization) Signer() pda.Address { return a.signer }

// Verified reports whether the identity proof held.
func (a Authorization) Verified() bool { return a.verified }

// VerifySignature checks an ed25519 signature over message and, on success,
// returns an Authorization for the key's address.
func VerifySignature(pub ed25519.PublicKey, message, sig []byte) (Authorization, error) {
	if len(pub) != ed25519.PublicKeySize || !ed25519.Verify(pub, message, sig) {
		return Authorization{}, ErrMissingSignature
	}
	addr, err := pda.FromBytes(pub)
	if err != nil {
		return Authorization{}, ErrMissingSignature
	}
	return Authorization{signer: addr, verified: true}, nil
}

// ProvenSigner mints an Authorization for an identity that a trusted
// adapter has already authenticated by other means (for example the admin
// API after JWT validation). Callers own the proof obligation.
func ProvenSigner(addr pda.Address) Authorization {
	return Authorization{signer: addr, verified: true}
}
