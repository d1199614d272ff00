package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Reader ids are issued to door controllers at provisioning time. The id is
// a random UUID with an HMAC tail, so the server can verify one without a
// database lookup.

func GenerateReaderID(secret []byte) (string, error) {
	uuidObj, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	id := uuidObj.String()

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(id))
	signature := hex.EncodeToString(h.Sum(nil))[:16] // First 16 chars

	// Format: uuid-signature
	return fmt.Sprintf("%s-%s", id, signature), nil
}

func VerifyReaderID(readerID string, secret []byte) bool {
	parts := strings.Split(readerID, "-")
	if len(parts) != 6 { // uuid (5 parts) + signature (1 part)
		return false
	}

	id := strings.Join(parts[:5], "-")
	providedSig := parts[5]

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(id))
	expectedSig := hex.EncodeToString(h.Sum(nil))[:16]

	return hmac.Equal([]byte(providedSig), []byte(expectedSig))
}
