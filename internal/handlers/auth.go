package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/SAP-F-2025/proficiency-service/internal/config"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

const (
	identityKey = "identity"
	userIDKey   = "user_id"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Authenticator turns a bearer token into the caller's identity.
type Authenticator interface {
	Authenticate(token string) (models.Identity, error)
}

// NewAuthenticator builds the authenticator selected by AUTH_PROVIDER.
func NewAuthenticator(cfg *config.Config) (Authenticator, error) {
	switch cfg.Auth.Provider {
	case "casdoor":
		return NewCasdoorAuthenticator(cfg.Auth), nil
	case "jwt", "":
		return NewJWTAuthenticator(cfg.JWTSecret), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}

// ===== CASDOOR =====

type CasdoorAuthenticator struct {
	client *casdoorsdk.Client
}

func NewCasdoorAuthenticator(cfg config.AuthConfig) *CasdoorAuthenticator {
	return &CasdoorAuthenticator{
		client: casdoorsdk.NewClient(
			cfg.CasdoorEndpoint,
			cfg.CasdoorClientID,
			cfg.CasdoorClientSecret,
			cfg.CasdoorCertificate,
			cfg.CasdoorOrganization,
			cfg.CasdoorApplication,
		),
	}
}

func (a *CasdoorAuthenticator) Authenticate(token string) (models.Identity, error) {
	claims, err := a.client.ParseJwtToken(token)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	identity := models.Identity{
		ID:    claims.User.Id,
		Name:  claims.User.Name,
		Email: claims.User.Email,
		Role:  models.RoleCandidate,
	}
	if claims.User.IsAdmin {
		identity.Role = models.RoleAdmin
	}
	return identity, nil
}

// ===== HMAC JWT =====

type identityClaims struct {
	Name  string          `json:"name,omitempty"`
	Email string          `json:"email,omitempty"`
	Role  models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 tokens signed with a shared secret.
type JWTAuthenticator struct {
	secret []byte
	now    func() time.Time
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), now: time.Now}
}

func (a *JWTAuthenticator) Authenticate(token string) (models.Identity, error) {
	claims := &identityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" && claims.Email == "" {
		return models.Identity{}, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	role := claims.Role
	if role == "" {
		role = models.RoleCandidate
	}
	return models.Identity{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  role,
	}, nil
}

// Issue signs a token for identity valid for ttl.
func (a *JWTAuthenticator) Issue(identity models.Identity, ttl time.Duration) (string, error) {
	now := a.now()
	claims := identityClaims{
		Name:  identity.Name,
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ===== MIDDLEWARE =====

// AuthMiddleware requires a valid bearer token and stores the identity in the context
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			// Browsers cannot set headers on websocket upgrades.
			token = c.Query("access_token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Token required"})
			return
		}

		identity, err := auth.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid token"})
			return
		}

		c.Set(identityKey, identity)
		c.Set(userIDKey, identity.ID)
		c.Next()
	}
}

// AdminMiddleware rejects callers without the admin role
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
			return
		}
		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Admin role required"})
			return
		}
		c.Next()
	}
}

func IdentityFromContext(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}
