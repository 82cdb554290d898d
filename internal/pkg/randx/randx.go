/*
Package randx generates cryptographically secure random identifiers.

It produces Base62 session tokens and UUID message IDs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// SessionTokenLength is the fixed length of an opaque session token.
	SessionTokenLength = 32
)

// base62String draws length characters from crypto/rand.
func base62String(length int) (string, error) {
	result := make([]byte, length)

	for i := range length {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// SessionToken generates an opaque Base62 token of SessionTokenLength
// characters for use as a session cookie value.
func SessionToken() (string, error) {
	return base62String(SessionTokenLength)
}

// MessageID generates a UUID v4 string to identify a transcript message.
func MessageID() string {
	return uuid.New().String()
}

// IsValidSessionToken reports whether the given string has the shape of a
// session token: correct length and Base62 characters only.
func IsValidSessionToken(token string) bool {
	if len(token) != SessionTokenLength {
		return false
	}

	for _, char := range token {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
