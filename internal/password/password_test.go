package password

import (
	"strings"
	"testing"
)

// Tests use bcrypt's minimum cost so the suite stays fast; the cost factor
// does not change any of the properties under test.
func testHasher() *BcryptHasher {
	return NewBcryptHasher(4)
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("Secr3t!ab")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
	if !h.Verify("Secr3t!ab", hash) {
		t.Fatal("expected password verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("correct-password1!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h.Verify("wrong-password1!", hash) {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestHashSaltUniqueness(t *testing.T) {
	h := testHasher()

	first, err := h.Hash("Secr3t!ab")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := h.Hash("Secr3t!ab")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
	if !h.Verify("Secr3t!ab", first) || !h.Verify("Secr3t!ab", second) {
		t.Fatal("both hashes must verify against the original password")
	}
}

func TestHashOverlongPasswordFails(t *testing.T) {
	h := testHasher()

	if _, err := h.Hash(strings.Repeat("a", 100)); err == nil {
		t.Fatal("expected an error for a password over bcrypt's input limit")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := testHasher()

	if h.Verify("anything", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must not verify")
	}
}

func TestCostFallback(t *testing.T) {
	h := NewBcryptHasher(99)
	if h.cost != DefaultCost {
		t.Fatalf("expected cost %d, got %d", DefaultCost, h.cost)
	}
}
