package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formpreview/pkg/editor"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/preview"
)

// SessionCookie names the cookie holding the session id.
const SessionCookie = "formpreview_session"

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// session is one browser's editor and preview. Handlers hold mu for the
// whole event so edits, submits and renders never interleave.
type session struct {
	mu sync.Mutex

	id        string
	workspace *editor.Workspace
	preview   *preview.Preview
	mountErr  error
	lastSeen  time.Time

	// copyStatus and flash are shown once on the next render.
	copyStatus string
	flash      []string
}

// mount applies a freshly parsed schema to the preview. A schema the form
// layer rejects (an invalid pattern) leaves the previous preview in place
// and records the error for the preview section.
func (sess *session) mount(schema model.FormSchema, opts []preview.Option, logger *slog.Logger) {
	if sess.preview == nil {
		p, err := preview.New(schema, opts...)
		sess.mountErr = err
		if err == nil {
			sess.preview = p
		}
	} else {
		sess.mountErr = sess.preview.Mount(schema)
	}
	if sess.mountErr != nil {
		logger.Warn("schema could not be mounted", "session", sess.id, "error", sess.mountErr)
	}
}

func (sess *session) close() {
	if sess.preview != nil {
		sess.preview.Close()
	}
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
	create   func(id string) *session
	secure   bool
}

func newSessionStore(ttl time.Duration, now func() time.Time, create func(id string) *session) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      now,
		create:   create,
	}
}

// get returns the caller's session, creating one (and setting its cookie)
// when the cookie is missing or names an evicted session.
func (st *sessionStore) get(w http.ResponseWriter, r *http.Request) *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := st.sessions[cookie.Value]; ok {
			sess.lastSeen = now
			return sess
		}
	}

	st.sweepLocked(now)

	id := uuid.NewString()
	sess := st.create(id)
	sess.lastSeen = now
	st.sessions[id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (st *sessionStore) sweepLocked(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for id, sess := range st.sessions {
		if now.Sub(sess.lastSeen) > st.ttl {
			delete(st.sessions, id)
			sess.close()
		}
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *sessionStore) closeAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, sess := range st.sessions {
		delete(st.sessions, id)
		sess.close()
	}
}
