package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-formpreview/pkg/theme"
)

// ColorSchemeHint is the client hint carrying the browser's color scheme.
const ColorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

const preferenceMaxAge = 365 * 24 * time.Hour

// cookieStore persists preferences as cookies on the current exchange.
type cookieStore struct {
	r *http.Request
	w http.ResponseWriter
}

func (c cookieStore) Load(key string) (string, bool, error) {
	cookie, err := c.r.Cookie(key)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", false, nil
		}
		return "", false, err
	}
	return cookie.Value, true, nil
}

func (c cookieStore) Save(key, value string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(preferenceMaxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// headerSignal reads the color scheme client hint. Its value is a quoted
// token such as "dark".
type headerSignal struct {
	r *http.Request
}

func (h headerSignal) PrefersDark() bool {
	value := strings.Trim(strings.TrimSpace(h.r.Header.Get(ColorSchemeHint)), `"`)
	return strings.EqualFold(value, string(theme.Dark))
}

// withPreference resolves the theme preference for each request and carries
// it on the request context. A stored cookie wins, then the configured
// default mode, then the client hint.
func (s *Server) withPreference(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-CH", ColorSchemeHint)
		w.Header().Add("Vary", ColorSchemeHint)
		var signal theme.Signal = headerSignal{r: r}
		if s.defaultMode != "" {
			dark := s.defaultMode == theme.Dark
			signal = theme.SignalFunc(func() bool { return dark })
		}
		pref := theme.Init(cookieStore{r: r, w: w}, signal, theme.WithLogger(s.logger))
		next.ServeHTTP(w, r.WithContext(theme.WithPreference(r.Context(), pref)))
	})
}

func preferenceFor(r *http.Request) *theme.Preference {
	if pref, ok := theme.FromContext(r.Context()); ok {
		return pref
	}
	return theme.Init(nil, nil)
}
