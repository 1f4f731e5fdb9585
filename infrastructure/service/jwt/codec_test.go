package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/tasklist/application/port/outbound"
	domainerr "github.com/fixora/tasklist/domain/error"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Set(t time.Time) { c.now = t }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)}
}

func TestCodec_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	codec := NewCodec(clock.Now)
	secret := []byte("secret-a")

	in := outbound.TokenClaims{UserID: "u1", Email: "a@b.com"}
	token, err := codec.Sign(in, secret, 15*time.Minute)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	out, err := codec.Verify(token, secret)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Email, out.Email)
	assert.True(t, out.IssuedAt.Equal(clock.Now().Truncate(time.Second)))
	assert.True(t, out.ExpiresAt.Equal(out.IssuedAt.Add(15*time.Minute)))
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	codec := NewCodec(clock.Now)
	secret := []byte("secret-a")
	ttl := 15 * time.Minute

	token, err := codec.Sign(outbound.TokenClaims{UserID: "u1", Email: "a@b.com"}, secret, ttl)
	require.NoError(t, err)
	issuedAt := clock.Now().Truncate(time.Second)

	clock.Set(issuedAt.Add(ttl - time.Millisecond))
	_, err = codec.Verify(token, secret)
	assert.NoError(t, err)

	clock.Set(issuedAt.Add(ttl + time.Millisecond))
	_, err = codec.Verify(token, secret)
	assert.Equal(t, domainerr.ErrCodeTokenExpired, domainerr.KindOf(err))
}

func TestCodec_SecretIsolation(t *testing.T) {
	codec := NewCodec(nil)
	secrets := [][]byte{[]byte("a"), []byte("b"), []byte("a-longer-secret"), []byte("A")}

	for i, a := range secrets {
		token, err := codec.Sign(outbound.TokenClaims{UserID: "u1"}, a, time.Minute)
		require.NoError(t, err)

		for j, b := range secrets {
			_, err := codec.Verify(token, b)
			if i == j {
				assert.NoError(t, err)
				continue
			}
			assert.Equal(t, domainerr.ErrCodeSignatureInvalid, domainerr.KindOf(err), "signed with %q verified with %q", a, b)
		}
	}
}

func TestCodec_ExpiredAndForgedIsInvalidNotExpired(t *testing.T) {
	clock := newFakeClock()
	codec := NewCodec(clock.Now)

	token, err := codec.Sign(outbound.TokenClaims{UserID: "u1"}, []byte("a"), time.Minute)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = codec.Verify(token, []byte("b"))
	assert.Equal(t, domainerr.ErrCodeSignatureInvalid, domainerr.KindOf(err))
}

func TestCodec_RejectsMalformedInput(t *testing.T) {
	codec := NewCodec(nil)
	secret := []byte("secret")

	valid, err := codec.Sign(outbound.TokenClaims{UserID: "u1"}, secret, time.Minute)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"userId": "u1",
		"exp":    time.Now().Add(time.Minute).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "u1"}).SignedString(secret)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@b.com",
		"exp":   time.Now().Add(time.Minute).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":            "not-a-token",
		"two segments":       parts[0] + "." + parts[1],
		"tampered payload":   parts[0] + "." + parts[1] + "x." + parts[2],
		"stripped signature": parts[0] + "." + parts[1] + ".",
		"other algorithm":    hs512,
		"missing exp":        noExp,
		"missing user id":    noUser,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(token, secret)
			assert.Equal(t, domainerr.ErrCodeSignatureInvalid, domainerr.KindOf(err))
		})
	}
}

func TestCodec_EmptySecret(t *testing.T) {
	codec := NewCodec(nil)

	_, err := codec.Sign(outbound.TokenClaims{UserID: "u1"}, nil, time.Minute)
	assert.Equal(t, domainerr.ErrCodeSecretMissing, domainerr.KindOf(err))

	_, err = codec.Verify("a.b.c", nil)
	assert.Equal(t, domainerr.ErrCodeSecretMissing, domainerr.KindOf(err))
}
