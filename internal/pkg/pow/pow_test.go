package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
)

// solve brute-forces a counter for the nonce at the given difficulty.
func solve(nonce string, difficulty int) string {
	prefix := strings.Repeat("0", difficulty)
	for i := 0; ; i++ {
		counter := fmt.Sprintf("%d", i)
		hash := sha256.Sum256([]byte(nonce + counter))
		if strings.HasPrefix(hex.EncodeToString(hash[:]), prefix) {
			return counter
		}
	}
}

func TestValidateProofIssuesToken(t *testing.T) {
	mgr := NewManager(1)

	nonce := mgr.GenerateNonce()
	counter := solve(nonce, 1)

	token, err := mgr.ValidateProof(nonce, counter)
	if err != nil {
		t.Fatalf("valid proof rejected: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty proof token")
	}

	r := httptest.NewRequest("POST", "/api/auth/register", nil)
	r.Header.Set(TokenHeaderKey, token)
	if !mgr.CheckProofToken(r) {
		t.Error("freshly issued proof token not accepted")
	}
}

func TestValidateProofConsumesNonce(t *testing.T) {
	mgr := NewManager(1)

	nonce := mgr.GenerateNonce()
	counter := solve(nonce, 1)

	if _, err := mgr.ValidateProof(nonce, counter); err != nil {
		t.Fatalf("valid proof rejected: %v", err)
	}
	if _, err := mgr.ValidateProof(nonce, counter); err == nil {
		t.Error("nonce accepted twice")
	}
}

func TestValidateProofRejectsBadCounter(t *testing.T) {
	mgr := NewManager(4)

	nonce := mgr.GenerateNonce()
	if _, err := mgr.ValidateProof(nonce, "not-a-proof"); err == nil {
		t.Error("bogus counter accepted")
	}
}

func TestCheckProofTokenRejectsUnknown(t *testing.T) {
	mgr := NewManager(1)

	r := httptest.NewRequest("POST", "/api/auth/register", nil)
	r.Header.Set(TokenHeaderKey, "made-up-token")
	if mgr.CheckProofToken(r) {
		t.Error("unknown proof token accepted")
	}
}
