// Package session starts and ends login sessions, and gates handlers
// behind them.
//
// A session lives in two places: a record in the database (SessionInterface)
// and a signed token in a cookie. The token names the record by its "jti",
// so deleting the record revokes the token.
package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/opst/contactbook/pkg/auth/keychain"
	kdb "github.com/opst/contactbook/pkg/db"
	xe "github.com/opst/contactbook/pkg/errors"
)

const (
	contextKeyUser    = "contactbook/session/user"
	contextKeySession = "contactbook/session/id"

	// LoginPath is where the login gate sends clients without valid session.
	LoginPath = "/login"
)

// Claims of session tokens.
//
// ID ("jti") is the session id, and Subject ("sub") is the username.
type Claims struct {
	jwt.RegisteredClaims
}

type Config struct {
	// name of the session cookie
	CookieName string

	// lifetime of sessions
	TTL time.Duration

	// when true, the cookie is sent over HTTPS only.
	Secure bool
}

type Manager interface {
	// Login starts a new session for the user, and sets the session cookie to the response.
	Login(c echo.Context, user kdb.User) error

	// Logout ends the session of the request, and clears the session cookie.
	//
	// Requests without session are not error.
	Logout(c echo.Context) error

	// Authenticate is the login gate middleware.
	//
	// It passes requests with valid session to next, with the user stored in echo.Context
	// (see User). Others are redirected to the login page.
	Authenticate(next echo.HandlerFunc) echo.HandlerFunc
}

type Option func(*manager)

// WithClock replaces the clock. For testing.
func WithClock(now func() time.Time) Option {
	return func(m *manager) {
		m.now = now
	}
}

func New(
	conf Config,
	users kdb.UserInterface,
	sessions kdb.SessionInterface,
	keys keychain.KeyProvider,
	options ...Option,
) Manager {
	m := &manager{
		conf:     conf,
		users:    users,
		sessions: sessions,
		keys:     keys,
		now:      time.Now,
	}
	for _, o := range options {
		o(m)
	}
	return m
}

type manager struct {
	conf     Config
	users    kdb.UserInterface
	sessions kdb.SessionInterface
	keys     keychain.KeyProvider
	now      func() time.Time
}

func (m *manager) Login(c echo.Context, user kdb.User) error {
	ctx := c.Request().Context()
	now := m.now()
	expiresAt := now.Add(m.conf.TTL).Truncate(time.Second)

	kid, k, err := m.keys.Provide(
		ctx,
		keychain.WithAlg(jwt.SigningMethodHS256.Name),
		keychain.WithExpAfter(expiresAt),
	)
	if err != nil {
		return xe.Wrap(err)
	}

	sess := kdb.Session{Id: uuid.NewString(), UserId: user.Id, ExpiresAt: expiresAt}
	if err := m.sessions.Add(ctx, sess); err != nil {
		return xe.Wrap(err)
	}

	token, err := keychain.NewJWS(kid, k, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.Id,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		return xe.Wrap(err)
	}

	c.SetCookie(m.cookie(token, expiresAt))
	return nil
}

func (m *manager) Logout(c echo.Context) error {
	defer m.clearCookie(c)

	id, ok := c.Get(contextKeySession).(string)
	if !ok {
		cookie, err := c.Cookie(m.conf.CookieName)
		if err != nil {
			return nil
		}
		claims, err := m.verify(c.Request().Context(), cookie.Value)
		if err != nil {
			return nil
		}
		id = claims.ID
	}

	if err := m.sessions.Remove(c.Request().Context(), id); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// errNoSession means the request has no acceptable session.
var errNoSession = errors.New("no session")

func (m *manager) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, sessionId, err := m.authenticate(c)
		if errors.Is(err, errNoSession) {
			m.clearCookie(c)
			return c.Redirect(http.StatusSeeOther, loginURL(c.Request()))
		} else if err != nil {
			return err
		}

		SetUser(c, user, sessionId)
		return next(c)
	}
}

func (m *manager) authenticate(c echo.Context) (kdb.User, string, error) {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(m.conf.CookieName)
	if err != nil || cookie.Value == "" {
		return kdb.User{}, "", errNoSession
	}

	claims, err := m.verify(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, keychain.ErrInvalidToken) || errors.Is(err, keychain.ErrNoKeyFound) ||
			errors.Is(err, jwt.ErrTokenRequiredClaimMissing) {
			c.Logger().Debugf("session token is rejected: %s", err)
			return kdb.User{}, "", errNoSession
		}
		return kdb.User{}, "", xe.Wrap(err)
	}

	sess, err := m.sessions.Get(ctx, claims.ID)
	if errors.Is(err, kdb.ErrMissing) {
		return kdb.User{}, "", errNoSession
	} else if err != nil {
		return kdb.User{}, "", xe.Wrap(err)
	}
	if sess.Expired(m.now()) {
		return kdb.User{}, "", errNoSession
	}

	user, err := m.users.Get(ctx, sess.UserId)
	if errors.Is(err, kdb.ErrMissing) {
		return kdb.User{}, "", errNoSession
	} else if err != nil {
		return kdb.User{}, "", xe.Wrap(err)
	}
	if user.Username != claims.Subject {
		return kdb.User{}, "", errNoSession
	}
	return user, sess.Id, nil
}

func (m *manager) verify(ctx context.Context, token string) (*Claims, error) {
	kc, err := m.keys.GetKeychain(ctx)
	if err != nil {
		return nil, err
	}
	return keychain.VerifyJWS[Claims](kc, token)
}

func (m *manager) cookie(value string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.conf.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.conf.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *manager) clearCookie(c echo.Context) {
	cookie := m.cookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

// SetUser marks the request as authenticated as the user in the session.
func SetUser(c echo.Context, user kdb.User, sessionId string) {
	c.Set(contextKeyUser, user)
	c.Set(contextKeySession, sessionId)
}

// User returns the user authenticated by the login gate.
func User(c echo.Context) (kdb.User, bool) {
	u, ok := c.Get(contextKeyUser).(kdb.User)
	return u, ok
}

// loginURL returns the login page URL which comes back to the request after login.
//
// Only GET requests are remembered, since the others cannot be replayed by redirection.
func loginURL(req *http.Request) string {
	if req.Method != http.MethodGet {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"next": {req.URL.RequestURI()}}.Encode()
}

// Next returns next if it is a path in this site, and fallback otherwise.
func Next(next string, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
