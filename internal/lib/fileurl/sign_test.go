package fileurl

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	signed := SignURL("abc123.png", "secret", time.Minute)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/abc123.png"))

	q := u.Query()
	assert.True(t, Verify("abc123.png", q.Get("expires"), q.Get("sig"), "secret"))
}

func TestVerifyRejectsTampering(t *testing.T) {
	signed := SignURL("abc123.png", "secret", time.Minute)
	q, _ := url.Parse(signed)
	query := q.Query()

	assert.False(t, Verify("other.png", query.Get("expires"), query.Get("sig"), "secret"))
	assert.False(t, Verify("abc123.png", query.Get("expires"), query.Get("sig"), "wrong-secret"))
	assert.False(t, Verify("abc123.png", "notanumber", query.Get("sig"), "secret"))
}

func TestVerifyRejectsExpired(t *testing.T) {
	signed := SignURL("abc123.png", "secret", -time.Minute)
	q, _ := url.Parse(signed)
	query := q.Query()

	assert.False(t, Verify("abc123.png", query.Get("expires"), query.Get("sig"), "secret"))
}
