package handler

import (
	"civictriage/backend/internal/config"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	staffRole       = "staff"
	ctxStaffSubject = "staff_subject"
)

// StaffClaims ідентифікують працівника, якому дозволено змінювати скарги
type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateStaffToken підписує HS256 токен для працівника
func GenerateStaffToken(secret []byte, subject string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	claims := StaffClaims{
		Role: staffRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    config.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseStaffToken перевіряє підпис, видавця, термін дії та роль
func ParseStaffToken(secret []byte, raw string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Role != staffRole {
		return nil, fmt.Errorf("role %q is not allowed", claims.Role)
	}
	return claims, nil
}

// RequireStaff пропускає лише запити з дійсним Bearer токеном працівника
func (h *Handler) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || len(h.JWTSecret) == 0 {
			h.unauthorized(c)
			return
		}

		claims, err := ParseStaffToken(h.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.WithError(err).WithField("route", c.FullPath()).Warn("rejected staff token")
			h.unauthorized(c)
			return
		}

		c.Set(ctxStaffSubject, claims.Subject)
		c.Next()
	}
}

func (h *Handler) unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": h.text(h.lang(c), "error.unauthorized", "unauthorized"),
	})
}
