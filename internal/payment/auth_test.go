package payment

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
)

func TestVerifySignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	message := EncodeInstruction(ProcessPaymentInstruction{
		OrderID:   "ORDER-1",
		Amount:    1_000_000,
		TokenMint: TestAddress(0xD0),
	})
	sig := ed25519.Sign(priv, message)

	auth, err := VerifySignature(pub, message, sig)
	if err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}
	if !auth.Verified() {
		t.Fatal("valid signature not marked verified")
	}
	if auth.Signer().String() == "" {
		t.Fatal("signer address empty")
	}

	// The signer address is the public key bytes.
	if got := auth.Signer().Bytes(); string(got) != string(pub) {
		t.Error("signer address does not match public key")
	}
}

func TestVerifySignatureRejects(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	message := []byte("settle order")
	sig := ed25519.Sign(priv, message)

	tests := []struct {
		name    string
		pub     ed25519.PublicKey
		message []byte
		sig     []byte
	}{
		{"tampered message", pub, []byte("settle other order"), sig},
		{"truncated signature", pub, message, sig[:len(sig)-1]},
		{"wrong key", func() ed25519.PublicKey {
			other, _, _ := ed25519.GenerateKey(rand.Reader)
			return other
		}(), message, sig},
		{"short key", pub[:16], message, sig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := VerifySignature(tt.pub, tt.message, tt.sig)
			if !errors.Is(err, ErrMissingSignature) {
				t.Fatalf("err = %v, want ErrMissingSignature", err)
			}
			if auth.Verified() {
				t.Fatal("rejected signature marked verified")
			}
		})
	}
}

func TestZeroAuthorizationIsUnverified(t *testing.T) {
	var auth Authorization
	if auth.Verified() {
		t.Fatal("zero Authorization must not verify")
	}
}
