package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/ecomitechltd/ZINEB/internal/common"
)

const defaultTokenTTL = 15 * time.Minute

// Tokens verifies session tokens issued by the authentication service and, for
// tooling, issues tokens with the same shape.
type Tokens struct {
	secret    []byte
	issuer    string
	audience  string
	clockSkew time.Duration
	ttl       time.Duration
	now       func() time.Time
}

// TokensConfig configures Tokens.
type TokensConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	TTL       time.Duration
}

// NewTokens constructs a Tokens instance.
func NewTokens(cfg TokensConfig) (*Tokens, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	skew := cfg.ClockSkew
	if skew < 0 {
		skew = 0
	}
	return &Tokens{
		secret:    []byte(secret),
		issuer:    strings.TrimSpace(cfg.Issuer),
		audience:  strings.TrimSpace(cfg.Audience),
		clockSkew: skew,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// WithNow allows tests to override the time provider.
func (t *Tokens) WithNow(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

// Issue signs an HS256 token for userID.
func (t *Tokens) Issue(userID string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	builder := jwt.NewBuilder().
		Subject(userID).
		IssuedAt(now).
		NotBefore(now.Add(-t.clockSkew)).
		Expiration(expiresAt)
	if t.issuer != "" {
		builder = builder.Issuer(t.issuer)
	}
	if t.audience != "" {
		builder = builder.Audience([]string{t.audience})
	}
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, t.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

// Verify validates token and returns its subject (the user id).
func (t *Tokens) Verify(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", unauthorized(errNoToken)
	}
	algorithm, err := tokenAlgorithm(trimmed)
	if err != nil {
		return "", unauthorized(err)
	}
	if algorithm != jwa.HS256 {
		return "", unauthorized(fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, t.secret), jwt.WithValidate(false))
	if err != nil {
		return "", unauthorized(err)
	}
	if err := t.validate(parsed); err != nil {
		return "", unauthorized(err)
	}
	if parsed.Subject() == "" {
		return "", unauthorized(errors.New("token has no subject"))
	}
	return parsed.Subject(), nil
}

func (t *Tokens) validate(tok jwt.Token) error {
	now := t.now()
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
	}
	if t.clockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(t.clockSkew))
	}
	if t.issuer != "" {
		options = append(options, jwt.WithIssuer(t.issuer))
	}
	if t.audience != "" {
		options = append(options, jwt.WithAudience(t.audience))
	}
	return jwt.Validate(tok, options...)
}

func tokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) != 1 {
		return "", errors.New("auth: token must carry exactly one signature")
	}
	headers := signatures[0].ProtectedHeaders()
	if headers == nil {
		return "", errors.New("auth: token missing protected headers")
	}
	alg := headers.Algorithm()
	if alg == "" || alg == jwa.NoSignature {
		return "", errors.New("auth: token has no usable algorithm")
	}
	return alg, nil
}

func unauthorized(err error) *common.AppError {
	return common.NewAppError(common.CodeUnauthorized, "Unauthorized", http.StatusUnauthorized, err)
}
