package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"annexe9-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const authContextKey = "auth_context"

var (
	secretMu  sync.RWMutex
	jwtSecret = []byte("super-secret-key-change-me")
)

// SetJWTSecret installs the signing secret once at startup.
func SetJWTSecret(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	secretMu.Lock()
	jwtSecret = []byte(s)
	secretMu.Unlock()
}

func secret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	return jwtSecret
}

// SignToken mints a session token for a staff user.
func SignToken(userID int64, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret())
}

// RequireAuth accepts the session token from the Authorization header or,
// for links opened outside the app (PDF downloads), from a token query
// parameter.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			raw = strings.TrimSpace(c.Query("token"))
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentification requise", "code": "unauthorized"})
			return
		}

		parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret(), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session invalide ou expirée", "code": "unauthorized"})
			return
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session invalide ou expirée", "code": "unauthorized"})
			return
		}

		var rc domain.RequestContext
		if id, ok := claims["user_id"].(float64); ok {
			rc.UserID = int64(id)
		}
		if role, ok := claims["role"].(string); ok {
			rc.Role = role
		}
		c.Set(authContextKey, rc)
		c.Next()
	}
}

// RequireStaff layers a role check on top of RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch GetRole(c) {
		case "admin", "staff":
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "accès réservé au personnel", "code": "forbidden"})
		}
	}
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// GetRequestContext returns the authenticated identity, zero when anonymous.
func GetRequestContext(c *gin.Context) domain.RequestContext {
	if v, ok := c.Get(authContextKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc
		}
	}
	return domain.RequestContext{}
}

// GetUserID returns the authenticated staff user id, 0 when anonymous.
func GetUserID(c *gin.Context) int64 {
	return GetRequestContext(c).UserID
}

func GetRole(c *gin.Context) string {
	return GetRequestContext(c).Role
}
