package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// Outcomes name the gateway return routes; each is also the first path segment
const (
	OutcomeSuccess = "success"
	OutcomeFail    = "fail"
	OutcomeCancel  = "cancel"
)

// SignatureParam is the query parameter that carries a return URL's signature
const SignatureParam = "sig"

// SignReturn computes hex(HMAC-SHA256(secret, outcome + ":" + transactionID))
func SignReturn(secret, outcome, transactionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(outcome + ":" + transactionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyReturn reports whether signature matches the outcome and transaction id
func VerifyReturn(secret, outcome, transactionID, signature string) bool {
	provided, err := hex.DecodeString(signature)
	if err != nil || len(provided) == 0 {
		return false
	}
	expected, _ := hex.DecodeString(SignReturn(secret, outcome, transactionID))
	return hmac.Equal(provided, expected)
}

// ReturnURL builds the address the gateway sends the customer back to.
// The signature is omitted when secret is empty.
func ReturnURL(baseURL, outcome, transactionID, secret string) string {
	u := fmt.Sprintf("%s/%s/%s", baseURL, outcome, url.PathEscape(transactionID))
	if secret == "" {
		return u
	}
	return u + "?" + SignatureParam + "=" + SignReturn(secret, outcome, transactionID)
}
