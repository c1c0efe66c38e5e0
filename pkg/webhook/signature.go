package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request
const SignatureHeader = "X-Signature"

// SignForm computes the signature of form values: HMAC-SHA256 over the
// key-sorted "k=v" pairs joined with "&"
func SignForm(secret string, formValues url.Values) string {
	var keys []string
	for k := range formValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range formValues[k] {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}

	return SignBody(secret, []byte(strings.Join(parts, "&")))
}

// SignBody computes the signature of a raw request body
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyFormSignature checks a form-encoded webhook.
// If secret is empty, verification is skipped (for development/testing)
func VerifyFormSignature(secret string, formValues url.Values, signature string) error {
	if secret == "" {
		return nil
	}
	return compare(SignForm(secret, formValues), signature)
}

// VerifyBodySignature checks a JSON webhook against its raw body.
// If secret is empty, verification is skipped (for development/testing)
func VerifyBodySignature(secret string, body []byte, signature string) error {
	if secret == "" {
		return nil
	}
	return compare(SignBody(secret, body), signature)
}

func compare(expected, signature string) error {
	if signature == "" {
		return fmt.Errorf("signature header missing")
	}
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}
