package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

// errVerification is the only error Verify returns, whatever went wrong.
var errVerification = errors.New("webhook verification failed")

// Verify checks an HMAC-SHA256 signature over body in constant time.
// signature is either "sha256=<hex>" (GitHub's X-Hub-Signature-256) or
// bare hex.
func Verify(body []byte, signature, secret string) error {
	if secret == "" || signature == "" {
		return errVerification
	}
	got, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return errVerification
	}
	if subtle.ConstantTimeCompare(mac(body, secret), got) != 1 {
		return errVerification
	}
	return nil
}

// Sign returns the "sha256=<hex>" signature a caller must send for body.
func Sign(body []byte, secret string) string {
	return "sha256=" + hex.EncodeToString(mac(body, secret))
}

func mac(body []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return h.Sum(nil)
}
