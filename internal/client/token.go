package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errNoRefreshToken = errors.New("no refresh token available")

// expirySlack is how close to the access token's exp claim we refresh
// proactively instead of waiting for the 401.
const expirySlack = 30 * time.Second

// currentAccessToken returns the token to attach to the next request,
// refreshing first when the stored one is about to expire. A failed
// proactive refresh is not fatal: the stale token is returned and the
// 401 path stays the authority.
func (c *backendClient) currentAccessToken(ctx context.Context) string {
	token, err := c.tokens.AccessToken()
	if err != nil || token == "" {
		return ""
	}
	if !tokenExpiringSoon(token, time.Now()) {
		return token
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another request may have rotated the token while we waited.
	if latest, err := c.tokens.AccessToken(); err == nil && latest != "" && latest != token {
		return latest
	}

	access, err := c.refreshCall(ctx)
	if err != nil {
		c.logger.Debug("proactive token refresh failed", "error", err)
		return token
	}
	if err := c.tokens.SetAccessToken(access); err != nil {
		c.logger.Warn("persist refreshed access token", "error", err)
	}
	return access
}

// recoverAuth handles a 401 on an authorized request: exactly one
// refresh attempt, and on any refresh failure all stored credentials
// are cleared and the caller gets a session-expired error. Never loops.
func (c *backendClient) recoverAuth(ctx context.Context, staleToken string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// A concurrent request already completed a refresh; reuse its token.
	if latest, err := c.tokens.AccessToken(); err == nil && latest != "" && latest != staleToken {
		return nil
	}

	access, err := c.refreshCall(ctx)
	if err != nil {
		if clearErr := c.tokens.Clear(); clearErr != nil {
			c.logger.Warn("clear credentials after failed refresh", "error", clearErr)
		}
		c.logger.Info("session expired, credentials cleared")
		return &APIError{Kind: KindAuthExpired, Status: http.StatusUnauthorized, Message: sessionExpiredMessage}
	}
	if err := c.tokens.SetAccessToken(access); err != nil {
		return fmt.Errorf("persist refreshed access token: %w", err)
	}
	return nil
}

// refreshCall exchanges the stored refresh token for a new access
// token. It bypasses do() so it can never recurse into the retry path.
func (c *backendClient) refreshCall(ctx context.Context) (string, error) {
	refresh, err := c.tokens.RefreshToken()
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	if refresh == "" {
		return "", errNoRefreshToken
	}

	body, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", fmt.Errorf("marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/token/refresh/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", responseError(resp.StatusCode, respBody)
	}

	var reply struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if reply.Access == "" {
		return "", errors.New("refresh response missing access token")
	}
	return reply.Access, nil
}

// tokenExpiringSoon decodes the exp claim without verifying the
// signature; verification is the backend's job, the client only needs
// the deadline. Tokens that don't parse are treated as still live and
// left to the 401 path.
func tokenExpiringSoon(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.Add(expirySlack).After(exp.Time)
}
