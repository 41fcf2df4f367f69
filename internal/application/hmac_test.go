package application

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "hush"

func signedQuery(values url.Values) url.Values {
	out := url.Values{}
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	out.Set("hmac", SignQuery(testSecret, values))
	return out
}

func TestCanonicalQuery(t *testing.T) {
	q := url.Values{
		"shop":      {"foo.myshopify.com"},
		"code":      {"0907a61c0c8d55e99db179b68161bc00"},
		"timestamp": {"1337178173"},
		"hmac":      {"ignored"},
		"signature": {"ignored"},
		"state":     {"a&b=c%"},
	}
	assert.Equal(t,
		"code=0907a61c0c8d55e99db179b68161bc00&shop=foo.myshopify.com&state=a%26b=c%25&timestamp=1337178173",
		CanonicalQuery(q))

	multi := url.Values{"ids": {"1", "2"}}
	assert.Equal(t, `ids=["1", "2"]`, CanonicalQuery(multi))
}

func TestVerifyQuery_KnownVector(t *testing.T) {
	// Vector from Shopify's OAuth documentation
	q := url.Values{
		"code":      {"0907a61c0c8d55e99db179b68161bc00"},
		"shop":      {"some-shop.myshopify.com"},
		"state":     {"0.6784241404160823"},
		"timestamp": {"1337178173"},
		"hmac":      {"700e2dadb827fcc8609e9d5ce208b2e9cdaab9df07390d2cbca10d7c328fc4bf"},
	}
	assert.True(t, VerifyQuery("hush", q))
}

func TestVerifyQuery_RoundTrip(t *testing.T) {
	queries := []url.Values{
		{"shop": {"foo.example.com"}, "code": {"tempcode"}, "state": {"abc123"}},
		{"shop": {"foo.myshopify.com"}, "code": {"c"}, "timestamp": {"1700000000"}, "host": {"YWRtaW4uc2hvcGlmeS5jb20vc3RvcmUvZm9v"}},
		{"shop": {"x"}},
		{},
	}
	for _, q := range queries {
		assert.True(t, VerifyQuery(testSecret, signedQuery(q)), CanonicalQuery(q))
	}
}

func TestVerifyQuery_Mutation(t *testing.T) {
	base := url.Values{
		"shop":      {"foo.myshopify.com"},
		"code":      {"tempcode"},
		"state":     {"abc123"},
		"timestamp": {"1700000000"},
	}
	signed := signedQuery(base)

	for key := range base {
		t.Run("mutate "+key, func(t *testing.T) {
			q := signedQuery(base)
			q.Set(key, q.Get(key)+"x")
			assert.False(t, VerifyQuery(testSecret, q))
		})
	}

	t.Run("add parameter", func(t *testing.T) {
		q := signedQuery(base)
		q.Set("extra", "1")
		assert.False(t, VerifyQuery(testSecret, q))
	})

	t.Run("drop parameter", func(t *testing.T) {
		q := signedQuery(base)
		q.Del("timestamp")
		assert.False(t, VerifyQuery(testSecret, q))
	})

	t.Run("signature param is ignored", func(t *testing.T) {
		q := signedQuery(base)
		q.Set("signature", "anything")
		assert.True(t, VerifyQuery(testSecret, q))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, VerifyQuery("other", signed))
	})
}

func TestVerifyQuery_MalformedSignature(t *testing.T) {
	base := url.Values{"shop": {"foo.myshopify.com"}, "code": {"c"}}
	good := SignQuery(testSecret, base)

	for name, h := range map[string]string{
		"empty":     "",
		"not hex":   "zz" + good[2:],
		"truncated": good[:10],
		"too long":  good + "00",
		"uppercase": strings.ToUpper(good),
	} {
		t.Run(name, func(t *testing.T) {
			q := url.Values{"shop": base["shop"], "code": base["code"], "hmac": {h}}
			ok := VerifyQuery(testSecret, q)
			if name == "uppercase" {
				assert.True(t, ok)
				return
			}
			assert.False(t, ok)
		})
	}
}
