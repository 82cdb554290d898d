package randx

import "testing"

func TestSessionTokenShape(t *testing.T) {
	token, err := SessionToken()
	if err != nil {
		t.Fatalf("SessionToken returned error: %v", err)
	}
	if len(token) != SessionTokenLength {
		t.Fatalf("expected token length %d, got %d", SessionTokenLength, len(token))
	}
	if !IsValidSessionToken(token) {
		t.Errorf("generated token %q failed its own validation", token)
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := SessionToken()
		if err != nil {
			t.Fatalf("SessionToken returned error: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestIsValidSessionToken(t *testing.T) {
	if IsValidSessionToken("short") {
		t.Error("short string accepted as session token")
	}
	if IsValidSessionToken("!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!") {
		t.Error("non-Base62 string accepted as session token")
	}
}
