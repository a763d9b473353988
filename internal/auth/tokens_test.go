package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

func newTestTokens(t *testing.T, now time.Time) *Tokens {
	t.Helper()
	tokens, err := NewTokens(TokensConfig{
		Secret:    "super-secret-key",
		Issuer:    "esimfly-auth",
		Audience:  "esimfly-web",
		ClockSkew: time.Second,
		TTL:       time.Minute,
	})
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	tokens.WithNow(func() time.Time { return now })
	return tokens
}

func signWith(t *testing.T, alg jwa.SignatureAlgorithm, secret string, build func(*jwt.Builder) *jwt.Builder) string {
	t.Helper()
	tok, err := build(jwt.NewBuilder()).Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(alg, []byte(secret)))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func TestTokensIssueAndVerify(t *testing.T) {
	tokens := newTestTokens(t, time.Now())
	token, expires, err := tokens.Issue("user-id")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if expires.IsZero() {
		t.Fatal("expected expiry")
	}
	subject, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "user-id" {
		t.Fatalf("unexpected subject: %s", subject)
	}
}

func TestTokensRejectExpired(t *testing.T) {
	issuedAt := time.Now()
	tokens := newTestTokens(t, issuedAt)
	token, _, err := tokens.Issue("user-id")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tokens.WithNow(func() time.Time { return issuedAt.Add(2 * time.Minute) })
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("expected expiration error")
	}
}

func TestTokensRejectIssuerMismatch(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(t, now)
	token := signWith(t, jwa.HS256, "super-secret-key", func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("user-id").Issuer("someone-else").Audience([]string{"esimfly-web"}).
			IssuedAt(now).Expiration(now.Add(time.Minute))
	})
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestTokensRejectAudienceMismatch(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(t, now)
	token := signWith(t, jwa.HS256, "super-secret-key", func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("user-id").Issuer("esimfly-auth").Audience([]string{"mobile"}).
			IssuedAt(now).Expiration(now.Add(time.Minute))
	})
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("expected audience mismatch error")
	}
}

func TestTokensRejectAlgorithmMismatch(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(t, now)
	token := signWith(t, jwa.HS384, "super-secret-key", func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("user-id").Issuer("esimfly-auth").Audience([]string{"esimfly-web"}).
			IssuedAt(now).Expiration(now.Add(time.Minute))
	})
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("expected algorithm mismatch error")
	}
}

func TestTokensRejectWrongSecret(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(t, now)
	token := signWith(t, jwa.HS256, "another-secret", func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("user-id").Issuer("esimfly-auth").Audience([]string{"esimfly-web"}).
			IssuedAt(now).Expiration(now.Add(time.Minute))
	})
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens(TokensConfig{Secret: "  "}); err == nil {
		t.Fatal("expected missing secret error")
	}
}
