package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash = %q, want PHC argon2id format", hash)
	}

	ok, err := VerifyPassword("hunter2", hash)
	if err != nil || !ok {
		t.Errorf("VerifyPassword(correct) = %v, %v", ok, err)
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil || ok {
		t.Errorf("VerifyPassword(wrong) = %v, %v", ok, err)
	}

	// Hashes are salted: same password never produces the same string
	hash2, _ := HashPassword("hunter2")
	if hash == hash2 {
		t.Error("two hashes of the same password are identical")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "plaintext", "$bcrypt$x$y$z$w", "$argon2id$v=19$m=bad$c2FsdA$aGFzaA"} {
		if _, err := VerifyPassword("pw", encoded); err == nil {
			t.Errorf("VerifyPassword(%q) should fail", encoded)
		}
	}
}

func TestReaderID(t *testing.T) {
	secret := []byte("test-secret")

	id, err := GenerateReaderID(secret)
	if err != nil {
		t.Fatalf("GenerateReaderID failed: %v", err)
	}
	if !VerifyReaderID(id, secret) {
		t.Error("generated reader id should verify")
	}
	if VerifyReaderID(id, []byte("other-secret")) {
		t.Error("reader id should not verify with a different secret")
	}
	if VerifyReaderID("not-a-reader-id", secret) {
		t.Error("malformed reader id should not verify")
	}

	// Tampered uuid fails signature check
	tampered := "0" + id[1:]
	if tampered != id && VerifyReaderID(tampered, secret) {
		t.Error("tampered reader id should not verify")
	}
}
