package application

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Parameters excluded from the signed message
var unsignedParams = map[string]bool{
	"hmac":      true,
	"signature": true,
}

var (
	keyEscaper   = strings.NewReplacer("%", "%25", "&", "%26", "=", "%3D")
	valueEscaper = strings.NewReplacer("%", "%25", "&", "%26")
)

// CanonicalQuery builds the message Shopify signs: every parameter except
// hmac and signature, sorted by key, joined as k=v with '&'. Multi-valued
// parameters are rendered as ["a", "b"].
func CanonicalQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if !unsignedParams[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		vs := values[k]
		var v string
		if len(vs) == 1 {
			v = valueEscaper.Replace(vs[0])
		} else {
			quoted := make([]string, len(vs))
			for i, item := range vs {
				quoted[i] = `"` + valueEscaper.Replace(item) + `"`
			}
			v = "[" + strings.Join(quoted, ", ") + "]"
		}
		pairs = append(pairs, keyEscaper.Replace(k)+"="+v)
	}
	return strings.Join(pairs, "&")
}

// SignQuery returns the hex HMAC-SHA256 of the canonical query
func SignQuery(secret string, values url.Values) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(CanonicalQuery(values)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyQuery checks the hmac parameter against the canonical query in
// constant time. Malformed or missing signatures verify as false.
func VerifyQuery(secret string, values url.Values) bool {
	provided, err := hex.DecodeString(values.Get("hmac"))
	if err != nil || len(provided) != sha256.Size {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(CanonicalQuery(values)))
	return hmac.Equal(mac.Sum(nil), provided)
}
