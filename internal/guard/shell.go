package guard

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"automatik/internal/guard/metrics"
	"automatik/pkg/requestcontext"
)

// Shell serves the portal's single-page bundle. Page navigations pass through
// the Guard; existing static assets are served as they are.
type Shell struct {
	guard        *Guard
	files        fs.FS
	fileServer   http.Handler
	index        []byte
	indexModTime time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics
	secureCookie bool
}

type ShellOption func(*Shell)

func WithShellLogger(logger *slog.Logger) ShellOption {
	return func(s *Shell) { s.logger = logger }
}

func WithShellMetrics(m *metrics.Metrics) ShellOption {
	return func(s *Shell) { s.metrics = m }
}

// WithSecureCookies marks cookies written by the shell as Secure.
func WithSecureCookies(secure bool) ShellOption {
	return func(s *Shell) { s.secureCookie = secure }
}

// NewShell serves files from the bundle root. files must contain index.html.
func NewShell(g *Guard, files fs.FS, opts ...ShellOption) (*Shell, error) {
	index, err := fs.ReadFile(files, "index.html")
	if err != nil {
		return nil, fmt.Errorf("read portal index: %w", err)
	}
	s := &Shell{
		guard:      g,
		files:      files,
		fileServer: http.FileServerFS(files),
		index:      index,
		logger:     slog.Default(),
	}
	if info, err := fs.Stat(files, "index.html"); err == nil {
		s.indexModTime = info.ModTime()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Shell) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if s.isAsset(r.URL.Path) {
		s.fileServer.ServeHTTP(w, r)
		return
	}

	ctx := r.Context()
	session := NewSession(NewCookieStorage(w, r, s.secureCookie))
	decision := s.guard.Evaluate(session, r.URL.Path, requestcontext.Now(ctx))
	if s.metrics != nil {
		s.metrics.IncrementDecision(decision.Action.String())
	}

	switch decision.Action {
	case RedirectLogin:
		s.logger.DebugContext(ctx, "portal navigation requires login",
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(ctx),
		)
		http.Redirect(w, r, loginLocation(decision), http.StatusFound)
	case RedirectTenant:
		s.logger.InfoContext(ctx, "portal navigation redirected to own tenant",
			"path", r.URL.Path,
			"location", decision.Location,
			"request_id", requestcontext.RequestID(ctx),
		)
		http.Redirect(w, r, decision.Location, http.StatusFound)
	default:
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, "index.html", s.indexModTime, bytes.NewReader(s.index))
	}
}

// isAsset reports whether p names a regular file of the bundle other than
// the index page.
func (s *Shell) isAsset(p string) bool {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" || name == "index.html" {
		return false
	}
	info, err := fs.Stat(s.files, name)
	return err == nil && !info.IsDir()
}

func loginLocation(d Decision) string {
	if d.From == "" || d.From == "/" {
		return d.Location
	}
	return d.Location + "?" + url.Values{"from": {d.From}}.Encode()
}
