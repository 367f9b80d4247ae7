package password_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/studentms/internal/auth/password"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := password.NewBcryptHasher(password.WithCost(4)) // min cost keeps the test fast

	hash, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := h.Verify("correct-horse", hash); err != nil {
		t.Fatalf("Verify rejected the right password: %v", err)
	}
	if err := h.Verify("wrong-horse", hash); !errors.Is(err, password.ErrMismatch) {
		t.Fatalf("Verify(wrong) = %v, want ErrMismatch", err)
	}
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	h := password.NewBcryptHasher(password.WithCost(4))

	a, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	b, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ (random salt)")
	}

	// Both still verify.
	if err := h.Verify("same-password", a); err != nil {
		t.Errorf("first hash failed verification: %v", err)
	}
	if err := h.Verify("same-password", b); err != nil {
		t.Errorf("second hash failed verification: %v", err)
	}
}

func TestBcryptHasher_LengthBounds(t *testing.T) {
	h := password.NewBcryptHasher(password.WithCost(4))

	if _, err := h.Hash("short"); err == nil {
		t.Error("expected error for password below minimum length")
	}
	if _, err := h.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("expected error for password above the bcrypt 72-byte limit")
	}
	if _, err := h.Hash(strings.Repeat("x", 72)); err != nil {
		t.Errorf("72-byte password should be accepted, got %v", err)
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := password.NewBcryptHasher(password.WithCost(4))

	err := h.Verify("whatever-pw", "not-a-bcrypt-hash")
	if !errors.Is(err, password.ErrMalformedHash) {
		t.Fatalf("Verify(malformed hash) = %v, want ErrMalformedHash", err)
	}
}

func TestNewHasher_FromConfig(t *testing.T) {
	cfg := password.Config{}
	cfg.ApplyDefaults()
	if cfg.Cost != 10 {
		t.Errorf("default cost = %d, want 10", cfg.Cost)
	}
	if cfg.MinLength != 8 {
		t.Errorf("default min length = %d, want 8", cfg.MinLength)
	}

	h := password.NewHasher(password.Config{Cost: 4, MinLength: 8})
	hash, err := h.Hash("long-enough")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if err := h.Verify("long-enough", hash); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
}
