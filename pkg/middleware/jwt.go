package middleware

import (
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/weft-dev/weft/pkg/weft"
)

// ClaimsKey is the Context.State key under which validated token claims
// are stored.
const ClaimsKey = "jwt_claims"

// JWTConfig holds the JWT middleware configuration.
type JWTConfig struct {
	// Secret is the HMAC signing secret used to verify tokens. When
	// empty, the application's first signing key is used.
	Secret []byte

	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string

	// Audience is the expected aud claim. If empty, audience is not validated.
	Audience string

	// Passthrough lets unauthenticated requests continue instead of
	// failing with 401. Claims are only set when a valid token was
	// presented.
	Passthrough bool
}

// JWT returns middleware that validates a bearer token from the
// Authorization header. Valid claims land in Context.State under
// ClaimsKey; missing or invalid tokens fail the request with an exposed
// 401 unless Passthrough is set.
func JWT(cfg JWTConfig) weft.Handler {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(cfg.Audience))
	}
	parser := jwtlib.NewParser(opts...)

	return func(c *weft.Context, next weft.Next) error {
		secret := cfg.Secret
		if secret == nil {
			if keys := c.App().Keys; len(keys) > 0 {
				secret = []byte(keys[0])
			}
		}

		raw, ok := bearerToken(c.Request.Get("Authorization"))
		if !ok {
			if cfg.Passthrough {
				return next()
			}
			return unauthorized(weft.NewError(http.StatusUnauthorized, "authentication required"))
		}

		claims := jwtlib.MapClaims{}
		_, err := parser.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			if cfg.Passthrough {
				return next()
			}
			return unauthorized(weft.NewErrorf(http.StatusUnauthorized, "invalid token: %w", err))
		}

		c.State[ClaimsKey] = claims
		return next()
	}
}

// unauthorized attaches the bearer challenge to a 401 error. Headers
// set on the response facade do not survive the error path, so the
// challenge must travel on the error itself.
func unauthorized(e *weft.HTTPError) *weft.HTTPError {
	e.Headers = http.Header{}
	e.Headers.Set("WWW-Authenticate", "Bearer")
	return e
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
