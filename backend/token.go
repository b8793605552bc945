package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// setToken stores the bearer token and, when it is a JWT with an exp
// claim, its expiry. The token is issued and verified by the backend; the
// client only reads the claim, so the parse is deliberately unverified.
func (c *Client) setToken(token string) {
	var exp time.Time
	if token != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
			if t, err := claims.GetExpirationTime(); err == nil && t != nil {
				exp = t.Time
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.tokenExp = exp
}

func (c *Client) clearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.tokenExp = time.Time{}
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Token returns the currently held bearer token, empty when logged out.
func (c *Client) Token() string {
	return c.bearer()
}

// TokenExpired reports whether a held token carries an exp claim in the
// past. Tokens without an expiry never report expired.
func (c *Client) TokenExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != "" && !c.tokenExp.IsZero() && time.Now().After(c.tokenExp)
}
