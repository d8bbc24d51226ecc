package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "sid"

const sessionTTL = 24 * time.Hour

// SessionService issues and parses the signed session cookie. The cookie
// value is an HS256 JWT carrying the username; there is no server-side
// session state.
type SessionService struct {
	hmac   []byte
	secure bool
}

func NewSessionService(secret string, secure bool) *SessionService {
	return &SessionService{hmac: []byte(secret), secure: secure}
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *SessionService) Issue(username string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

func (s *SessionService) Parse(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", err
	}
	c, _ := token.Claims.(*sessionClaims)
	return c.Username, nil
}

func (s *SessionService) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey struct{}

// SessionMiddleware resolves the session cookie to a username in the request
// context. A missing or invalid cookie means anonymous, never an error.
func SessionMiddleware(s *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil {
				if username, err := s.Parse(c.Value); err == nil && username != "" {
					r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, username))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UsernameFromContext returns the logged-in username, or "" when anonymous.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
