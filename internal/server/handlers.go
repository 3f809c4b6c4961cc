package server

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formpreview/pkg/openapi"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/theme"
)

const (
	// AppName titles the preview page.
	AppName = "Form Preview"
	// CopiedMessage confirms a successful copy in the editor pane.
	CopiedMessage = "Copied to clipboard"
	// StaleFormMessage is shown when a submit targets an older schema.
	StaleFormMessage = "The form changed before it was submitted. Please review and submit again."

	emptyPreview = "<p class=\"text-sm\">Enter a valid schema to see the preview.</p>\n"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	mode := preferenceFor(r).Mode()
	data := map[string]any{
		"theme":      string(mode),
		"next_theme": string(mode.Toggle()),
		"script":     pageScript(),
		"editor":     s.boundary(sectionEditor, func() (string, error) { return s.renderEditor(sess) }),
		"preview":    s.boundary(sectionPreview, func() (string, error) { return s.renderPreview(r, sess, mode) }),
	}
	sess.copyStatus = ""
	sess.flash = nil

	page, err := s.pages.RenderTemplate("templates/page", data)
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "page could not be rendered", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) renderEditor(sess *session) (string, error) {
	return s.pages.RenderTemplate("templates/editor", map[string]any{
		"text":        sess.workspace.Text(),
		"error":       sess.workspace.ErrorMessage(),
		"copy_status": sess.copyStatus,
	})
}

func (s *Server) renderPreview(r *http.Request, sess *session, mode theme.Mode) (string, error) {
	if sess.mountErr != nil {
		return "", sess.mountErr
	}
	if sess.preview == nil {
		return emptyPreview, nil
	}
	out, err := sess.preview.Render(r.Context(), render.RenderOptions{
		Action:     "/submit",
		Method:     http.MethodPost,
		FormErrors: sess.flash,
		Theme:      theme.RendererConfig(mode),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type schemaResponse struct {
	Error   string `json:"error,omitempty"`
	Preview string `json:"preview"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Parse errors are recorded on the workspace and shown in the editor.
	_ = sess.workspace.OnTextChanged(r.PostFormValue("schema"))

	if r.PostFormValue("fragment") == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	mode := preferenceFor(r).Mode()
	s.writeJSON(w, http.StatusOK, schemaResponse{
		Error:   sess.workspace.ErrorMessage(),
		Preview: s.boundary(sectionPreview, func() (string, error) { return s.renderPreview(r, sess, mode) }),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.submit(r, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) submit(r *http.Request, sess *session) {
	if sess.preview == nil {
		return
	}
	if rev := r.PostFormValue(render.RevisionFieldName); rev != "" && rev != strconv.Itoa(sess.preview.Revision()) {
		s.logger.Info("stale submission ignored", "session", sess.id, "revision", rev)
		sess.flash = append(sess.flash, StaleFormMessage)
		return
	}

	schema := sess.preview.Schema()
	values := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		values[field.ID] = r.PostFormValue(field.ID)
	}

	// Failures are already reflected in the preview's form errors.
	if _, err := sess.preview.Submit(r.Context(), values); err != nil {
		s.logger.Warn("submission failed", "session", sess.id, "error", err)
	}
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.copyStatus = CopiedMessage
	if err := sess.workspace.Copy(r.Context()); err != nil {
		sess.copyStatus = "Copy failed: " + err.Error()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	pref := preferenceFor(r)
	mode, err := pref.Toggle()
	if err != nil {
		s.logger.Warn("theme preference not saved", "error", err)
	}
	s.logger.Debug("theme toggled", "mode", string(mode))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	schema, ok := sess.workspace.Schema()
	sess.mu.Unlock()

	if !ok {
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": "no valid schema"})
		return
	}
	doc, err := openapi.ExportJSON(r.Context(), schema)
	if err != nil {
		s.logger.Warn("openapi export failed", "error", err)
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("encode response failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
