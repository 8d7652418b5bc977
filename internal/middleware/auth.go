package middleware

import (
	"errors"
	"net/http"
	"strings"

	"cityguide/internal/identity"
	"cityguide/internal/logging"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	UserIDKey    = "user_id"
	SessionIDKey = "session_id"
	IdentityKey  = "identity"

	// AccessTokenCookie is set by the auth provider's browser client.
	AccessTokenCookie = "sb-access-token"

	sessionIDField = "sid"
)

// SessionID assigns every browser session a random id, stored in the
// session cookie, that keys the cached device fingerprint.
func SessionID() gin.HandlerFunc {
	log := logging.Component("http")
	return func(c *gin.Context) {
		session := sessions.Default(c)
		sid, _ := session.Get(sessionIDField).(string)
		if sid == "" {
			sid = uuid.NewString()
			session.Set(sessionIDField, sid)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Msg("failed to save session")
			}
		}
		c.Set(SessionIDKey, sid)
		c.Next()
	}
}

// EndSession clears the session cookie and returns the id it carried.
func EndSession(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	sid, _ := session.Get(sessionIDField).(string)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sid, session.Save()
}

type Auth struct {
	jwtSecret []byte
}

func NewAuth(jwtSecret string) *Auth {
	return &Auth{jwtSecret: []byte(jwtSecret)}
}

// LoadIdentity verifies the access token from the Authorization header or
// the auth cookie and puts its subject on the context. Requests without a
// token continue anonymously; a bad token is rejected.
func (a *Auth) LoadIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}

		userID, err := a.verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func (a *Auth) verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

type visitorHeader struct {
	VisitorID string `header:"X-Visitor-Id" binding:"omitempty,alphanum,min=8,max=128"`
}

// ResolveIdentity resolves the caller's engagement identity once per request.
// An unresolvable caller gets the zero token and handlers decide what to skip.
func ResolveIdentity(resolver *identity.Resolver, fingerprintKey []byte) gin.HandlerFunc {
	log := logging.Component("http")
	return func(c *gin.Context) {
		var header visitorHeader
		if err := c.ShouldBindHeader(&header); err != nil {
			header.VisitorID = ""
		}

		tok, err := resolver.Resolve(
			c.GetString(SessionIDKey),
			identity.UserID(c.GetString(UserIDKey)),
			identity.NewHeaderFingerprinter(fingerprintKey, header.VisitorID),
		)
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("caller identity unavailable")
		}
		c.Set(IdentityKey, tok)
		c.Next()
	}
}

// CurrentIdentity returns the token set by ResolveIdentity.
func CurrentIdentity(c *gin.Context) identity.Token {
	if v, ok := c.Get(IdentityKey); ok {
		if tok, ok := v.(identity.Token); ok {
			return tok
		}
	}
	return identity.Token{}
}
