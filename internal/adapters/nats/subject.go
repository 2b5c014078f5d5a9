package natsadapter

import (
	"encoding/base64"
	"encoding/json"
)

// SubjectToken encodes a merchant id as a single subject token. The encoding
// is unpadded base64url, so distinct ids never share a token and dots or
// wildcards cannot change the subject's shape. An empty id maps to "_",
// which no non-empty id can produce.
func SubjectToken(id string) string {
	if id == "" {
		return "_"
	}
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// PayloadMerchant returns the merchantId field of a fence or order event,
// or "" when the payload has none.
func PayloadMerchant(data []byte) string {
	var p struct {
		MerchantID string `json:"merchantId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return ""
	}
	return p.MerchantID
}
