// Package auth guards the HTTP API with a single static bearer token.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Guard validates Bearer tokens against the configured one.
// A Guard with an empty token lets every request through.
type Guard struct {
	hash []byte
}

func NewGuard(token string) *Guard {
	if token == "" {
		return &Guard{}
	}
	return &Guard{hash: hashToken(token)}
}

// Enabled reports whether a token is required.
func (g *Guard) Enabled() bool { return g.hash != nil }

// Valid reports whether rawToken matches the configured token.
func (g *Guard) Valid(rawToken string) bool {
	if !g.Enabled() {
		return true
	}
	return subtle.ConstantTimeCompare(hashToken(rawToken), g.hash) == 1
}

// Middleware rejects requests without a valid Bearer token.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Enabled() {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API token"})
			return
		}
		if !g.Valid(strings.TrimPrefix(header, "Bearer ")) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API token"})
			return
		}
		c.Next()
	}
}

func hashToken(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}

// GenerateToken returns a random 256-bit token, hex encoded, suitable for
// server.token.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
