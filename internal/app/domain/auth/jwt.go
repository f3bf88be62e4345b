package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware.
const (
	UserIDKey        = "user_id"
	AuthenticatedKey = "authenticated"
	NicknameKey      = "nickname"
)

// JWTConfig holds JWT authentication configuration
type JWTConfig struct {
	SecretKey       string
	TokenExpiration time.Duration
	Logger          *zap.Logger
	Optional        bool // If true, missing/invalid tokens won't block the request
}

// Claims represents the JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

type JWTService struct{}

// NewJWTService creates a new JWT service
func NewJWTService() *JWTService {
	return &JWTService{}
}

// ValidateToken parses and validates a JWT token
func (s *JWTService) ValidateToken(config JWTConfig, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	return claims, nil
}

func tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// JWTAuthMiddleware authenticates the request from the Authorization header or the
// auth_token cookie. With Optional set, anonymous requests pass through.
func JWTAuthMiddleware(config JWTConfig) gin.HandlerFunc {
	service := NewJWTService()
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)

		if tokenString == "" {
			if config.Optional {
				c.Set(AuthenticatedKey, false)
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := service.ValidateToken(config, tokenString)
		if err != nil {
			if config.Logger != nil {
				config.Logger.Debug("Rejected token", zap.Error(err))
			}
			if config.Optional {
				c.Set(AuthenticatedKey, false)
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, uuid.MustParse(claims.UserID))
		c.Set(NicknameKey, claims.Nickname)
		c.Set(AuthenticatedKey, true)
		c.Next()
	}
}

// UserID returns the authenticated user, if any.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// UserIDPtr is UserID as an optional value, for owner-less records.
func UserIDPtr(c *gin.Context) *uuid.UUID {
	id, ok := UserID(c)
	if !ok {
		return nil
	}
	return &id
}
