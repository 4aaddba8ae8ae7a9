package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/supabase-community/supabase-go"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier resolves a Supabase access token to the user it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.AuthUser, error)
}

type supabaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier checks Supabase access tokens locally with the project's HS256 JWT secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*models.AuthUser, error) {
	claims := &supabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &models.AuthUser{ID: claims.Subject, Email: claims.Email}, nil
}

// SupabaseVerifier asks Supabase Auth who the token belongs to. Used when no JWT secret is configured.
type SupabaseVerifier struct {
	client *supabase.Client
}

func NewSupabaseVerifier(url, serviceKey string) (*SupabaseVerifier, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseVerifier{client: client}, nil
}

func (v *SupabaseVerifier) Verify(_ context.Context, token string) (*models.AuthUser, error) {
	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &models.AuthUser{ID: user.ID.String(), Email: user.Email}, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func authenticate(c *gin.Context, verifier TokenVerifier, token string) {
	if token == "" {
		abortUnauthorized(c, "Access token required")
		return
	}

	user, err := verifier.Verify(c.Request.Context(), token)
	if err != nil {
		utils.LogAuthAction("token rejected", "", false)
		abortUnauthorized(c, "Invalid or expired token")
		return
	}

	c.Set(userIDKey, user.ID)
	c.Set(userEmailKey, user.Email)
	c.Next()
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
	})
}

// AuthMiddleware requires "Authorization: Bearer <token>".
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, verifier, bearerToken(c))
	}
}

// WebSocketAuth also accepts the token as ?access_token=, since browsers cannot set headers on upgrades.
func WebSocketAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("access_token")
		}
		authenticate(c, verifier, token)
	}
}

// RequireSameUser rejects requests whose :userId differs from the authenticated user.
func RequireSameUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("userId") != GetUserID(c) {
			utils.LogAuthAction("cross-user access denied", GetUserID(c), false)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Access denied",
			})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func GetAuthUser(c *gin.Context) models.AuthUser {
	return models.AuthUser{ID: c.GetString(userIDKey), Email: c.GetString(userEmailKey)}
}
