package platform

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
)

// Login exchanges credentials for a bearer token and stores it.
func (c *platformClient) Login(ctx context.Context, email, password string) (*model.Session, error) {
	var resp model.LoginResponse
	data, err := c.Request(ctx, "/auth/login", RequestOptions{
		Method: http.MethodPost,
		Body:   model.LoginRequest{Email: email, Password: password},
	}, NoCache())
	if err != nil {
		return nil, err
	}
	if err := decode(data, &resp, "/auth/login"); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &common.APIError{
			Kind:     common.ErrAuthentication,
			Message:  "login response did not include a token",
			Endpoint: "/auth/login",
			Body:     data,
		}
	}

	lifetime, err := ParseExpiresIn(string(resp.ExpiresIn))
	if err != nil {
		c.log.WithError(err).Warnf("using default session lifetime of %s", DefaultSessionLifetime)
		lifetime = DefaultSessionLifetime
	}

	token := &oauth2.Token{
		AccessToken: resp.Token,
		TokenType:   "Bearer",
		Expiry:      c.now().Add(lifetime),
	}
	c.setSession(token)

	c.log.WithFields(log.Fields{
		"user":      resp.User.Email,
		"expiresAt": token.Expiry.Format(time.RFC3339),
	}).Info("logged in")
	return &model.Session{User: resp.User, ExpiresAt: token.Expiry}, nil
}

// Logout tells the server the session is over. The local credential and
// the whole cache are cleared whether or not the server call succeeds.
func (c *platformClient) Logout(ctx context.Context) error {
	_, err := c.Request(ctx, "/auth/logout", RequestOptions{Method: http.MethodPost}, NoCache())
	c.clearSession("logout")
	if err != nil {
		c.log.WithError(err).Warn("server logout failed, local session cleared anyway")
	}
	return nil
}

// Token returns a copy of the current credential. An expired credential
// is cleared on sight.
func (c *platformClient) Token() (*oauth2.Token, bool) {
	c.mu.Lock()
	token := c.token
	if token == nil {
		c.mu.Unlock()
		return nil, false
	}
	if !c.now().Before(token.Expiry) {
		c.mu.Unlock()
		c.clearSession("credential expired")
		return nil, false
	}
	cp := *token
	c.mu.Unlock()
	return &cp, true
}

func (c *platformClient) State() SessionState {
	if _, ok := c.Token(); ok {
		return Authenticated
	}
	return Anonymous
}

func (c *platformClient) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *platformClient) setSession(token *oauth2.Token) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Set(TokenKey, token.AccessToken); err != nil {
		c.log.WithError(err).Warn("failed to persist token")
		return
	}
	if err := c.store.Set(TokenExpiryKey, token.Expiry.UTC().Format(time.RFC3339Nano)); err != nil {
		c.log.WithError(err).Warn("failed to persist token expiry")
	}
}

// clearSession drops the credential, its persisted copy and every cached
// response. Logout, a 401 and local expiry all end up here.
func (c *platformClient) clearSession(reason string) {
	c.mu.Lock()
	hadToken := c.token != nil
	c.token = nil
	c.generation++
	c.mu.Unlock()

	c.removePersisted()
	c.ClearCache()

	if hadToken {
		c.log.WithField("reason", reason).Info("session cleared")
	}
}

func (c *platformClient) removePersisted() {
	if c.store == nil {
		return
	}
	for _, key := range []string{TokenKey, TokenExpiryKey} {
		if err := c.store.Remove(key); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("failed to remove persisted session")
		}
	}
}

// restoreSession picks up a still-valid credential from the store.
func (c *platformClient) restoreSession() {
	if c.store == nil {
		return
	}
	token, err := loadToken(c.store)
	if err != nil {
		c.log.WithError(err).Warn("discarding persisted session")
		c.removePersisted()
		return
	}
	if token == nil {
		return
	}
	if !c.now().Before(token.Expiry) {
		c.log.Debug("persisted session has expired")
		c.removePersisted()
		return
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.log.WithField("expiresAt", token.Expiry.Format(time.RFC3339)).Debug("restored session")
}

func loadToken(store common.KeyValueStore) (*oauth2.Token, error) {
	access, found, err := store.Get(TokenKey)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read token")
	}
	if !found || access == "" {
		return nil, nil
	}
	rawExpiry, found, err := store.Get(TokenExpiryKey)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read token expiry")
	}
	if !found {
		return nil, errors.New("token has no expiry")
	}
	expiry, err := time.Parse(time.RFC3339Nano, rawExpiry)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid token expiry %q", rawExpiry)
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer", Expiry: expiry}, nil
}

// ParseExpiresIn reads a session lifetime. It accepts Go durations ("90m",
// "1h30m"), whole days ("7d") and bare seconds ("3600").
func ParseExpiresIn(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty session lifetime")
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("session lifetime must be positive, got %q", v)
		}
		return time.Duration(secs) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid session lifetime %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid session lifetime %q", v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("session lifetime must be positive, got %q", v)
	}
	return d, nil
}
