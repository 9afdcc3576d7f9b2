package utils

import "testing"

func TestHashPassword_roundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Error("correct password should verify")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Error("wrong password should not verify")
	}
}

func TestHashPassword_saltedPerCall(t *testing.T) {
	h1, err := HashPassword("same-input", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	h2, err := HashPassword("same-input", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestVerifyPassword_garbageHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Error("garbage hash should never verify")
	}
}

func TestHashPassword_clampsBadCost(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	if err != nil {
		t.Fatalf("out-of-range cost should fall back, got: %v", err)
	}
	if !VerifyPassword(hash, "pw") {
		t.Error("hash from clamped cost should verify")
	}
}
