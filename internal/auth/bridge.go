package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/storage"
	"github.com/rs/zerolog"
)

// AuthBlob is the storage key name of a profile's identity tokens.
const AuthBlob = "auth"

// DefaultExpiresIn applies when the redirect fragment has no usable expires_in.
const DefaultExpiresIn = 3600 * time.Second

// ErrNoTokens is returned when a fragment lacks id_token or access_token.
var ErrNoTokens = errors.New("fragment has no id_token and access_token")

// Provider holds the identity provider's hosted sign-in settings.
type Provider struct {
	Domain       string
	ClientID     string
	RedirectURI  string
	LogoutURI    string
	Scopes       string
	ResponseType string
}

// Tokens are the credentials delivered in a sign-in redirect fragment.
type Tokens struct {
	IDToken     string
	AccessToken string
	ExpiresIn   time.Duration
}

// ParseFragment reads id_token, access_token and expires_in from the URL
// fragment (with or without the leading '#').
func ParseFragment(fragment string) (Tokens, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return Tokens{}, ErrNoTokens
	}
	params, err := url.ParseQuery(fragment)
	if err != nil {
		return Tokens{}, fmt.Errorf("parse fragment: %w", err)
	}

	t := Tokens{
		IDToken:     params.Get("id_token"),
		AccessToken: params.Get("access_token"),
		ExpiresIn:   DefaultExpiresIn,
	}
	if t.IDToken == "" || t.AccessToken == "" {
		return Tokens{}, ErrNoTokens
	}
	if secs, err := strconv.Atoi(params.Get("expires_in")); err == nil && secs > 0 {
		t.ExpiresIn = time.Duration(secs) * time.Second
	}
	return t, nil
}

// Session is the persisted authenticated state. ExpiresAt is a millisecond
// Unix epoch.
type Session struct {
	IDToken     string `json:"idToken"`
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// Expired reports whether now is past the expiry.
func (s Session) Expired(now time.Time) bool {
	return now.UnixMilli() > s.ExpiresAt
}

// Email is the display email from the ID token, if any.
func (s Session) Email() string {
	return EmailFromIDToken(s.IDToken)
}

// Bridge moves a profile between anonymous and authenticated.
type Bridge struct {
	provider Provider
	backend  storage.Storage
	sealer   *Sealer
	now      func() time.Time
}

// NewBridge creates a bridge. An empty provider domain disables sign-in.
func NewBridge(provider Provider, backend storage.Storage, sealer *Sealer) *Bridge {
	return &Bridge{provider: provider, backend: backend, sealer: sealer, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (b *Bridge) WithClock(now func() time.Time) *Bridge {
	b.now = now
	return b
}

// Enabled reports whether an identity provider is configured.
func (b *Bridge) Enabled() bool {
	return b != nil && b.provider.Domain != ""
}

// Consume stores the tokens found in fragment for the profile.
func (b *Bridge) Consume(ctx context.Context, profileID uuid.UUID, fragment string) (Session, error) {
	tokens, err := ParseFragment(fragment)
	if err != nil {
		return Session{}, err
	}
	sess := Session{
		IDToken:     tokens.IDToken,
		AccessToken: tokens.AccessToken,
		ExpiresAt:   b.now().Add(tokens.ExpiresIn).UnixMilli(),
	}

	plain, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}
	sealed, err := b.sealer.Seal(plain)
	if err != nil {
		return Session{}, err
	}
	if err := b.backend.Put(ctx, storage.Key(profileID, AuthBlob), sealed); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Current returns the profile's session, or false when anonymous. Expiry is
// checked here; an expired session is cleared.
func (b *Bridge) Current(ctx context.Context, profileID uuid.UUID) (Session, bool, error) {
	key := storage.Key(profileID, AuthBlob)
	sealed, ok, err := b.backend.Get(ctx, key)
	if err != nil {
		return Session{}, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return Session{}, false, nil
	}

	var sess Session
	plain, err := b.sealer.Open(sealed)
	if err == nil {
		err = json.Unmarshal(plain, &sess)
	}
	if err != nil || sess.IDToken == "" {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("discarding unreadable auth blob")
		return Session{}, false, nil
	}

	if sess.Expired(b.now()) {
		if err := b.backend.Delete(ctx, key); err != nil {
			return Session{}, false, fmt.Errorf("clear expired session: %w", err)
		}
		return Session{}, false, nil
	}
	return sess, true, nil
}

// SignOut clears every persisted auth field of the profile.
func (b *Bridge) SignOut(ctx context.Context, profileID uuid.UUID) error {
	if err := b.backend.Delete(ctx, storage.Key(profileID, AuthBlob)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// LoginURL is the provider's hosted sign-in page.
func (b *Bridge) LoginURL() string {
	q := url.Values{}
	q.Set("client_id", b.provider.ClientID)
	q.Set("response_type", b.provider.ResponseType)
	q.Set("scope", b.provider.Scopes)
	q.Set("redirect_uri", b.provider.RedirectURI)
	return strings.TrimRight(b.provider.Domain, "/") + "/login?" + q.Encode()
}

// LogoutURL is the provider's sign-out endpoint.
func (b *Bridge) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", b.provider.ClientID)
	logoutURI := b.provider.LogoutURI
	if logoutURI == "" {
		logoutURI = b.provider.RedirectURI
	}
	q.Set("logout_uri", logoutURI)
	return strings.TrimRight(b.provider.Domain, "/") + "/logout?" + q.Encode()
}
