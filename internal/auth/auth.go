package auth

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/revisehub/revisehub/config"
	"github.com/revisehub/revisehub/internal/model"
	"github.com/rs/zerolog/log"
)

const identityKey = "identity"

// SessionHeader carries the anonymous session id between requests from the
// same browser session.
const SessionHeader = "X-Session-ID"

// Verifier turns an incoming request into an Identity. Authentication is
// optional everywhere: a missing or invalid token yields an anonymous
// identity rather than a 401.
type Verifier struct {
	secret []byte
}

func NewVerifier(cfg *config.Config) *Verifier {
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET is not set. All requests will be treated as anonymous.")
	}
	return &Verifier{secret: []byte(cfg.Auth.JWTSecret)}
}

// Verify parses the bearer token and extracts the subject claims. Any
// failure is reported so the caller can log it, but the request still
// proceeds anonymously.
func (v *Verifier) Verify(bearer string) (model.Identity, error) {
	if len(v.secret) == 0 {
		return model.Identity{}, fmt.Errorf("no signing secret configured")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return model.Identity{}, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return model.Identity{}, fmt.Errorf("token has no subject")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return model.Identity{UserID: sub, Email: email, Name: name}, nil
}

// Middleware resolves the request identity and stores it in the gin context.
// Anonymous requests keep a stable session id from the session header, or
// get a fresh one.
func Middleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := model.Identity{}

		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			parsed, err := v.Verify(token)
			if err != nil {
				log.Debug().Err(err).Msg("Bearer token rejected, continuing anonymously")
			} else {
				identity = parsed
			}
		}

		if !identity.Authenticated() {
			sessionID := c.GetHeader(SessionHeader)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			identity.SessionID = sessionID
			c.Header(SessionHeader, sessionID)
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom pulls the request identity stored by Middleware.
func IdentityFrom(c *gin.Context) model.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(model.Identity); ok {
			return id
		}
	}
	return model.Identity{SessionID: uuid.NewString()}
}
