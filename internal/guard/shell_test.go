package guard

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"automatik/internal/guard/metrics"
	"automatik/pkg/requestcontext"
)

type ShellSuite struct {
	suite.Suite
	shell   *Shell
	metrics *metrics.Metrics
	now     time.Time
}

func TestShellSuite(t *testing.T) {
	suite.Run(t, new(ShellSuite))
}

func (s *ShellSuite) SetupTest() {
	files := fstest.MapFS{
		"index.html":    {Data: []byte("<html>portal</html>")},
		"assets/app.js": {Data: []byte("console.log(1)")},
	}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Unix(1_700_000_000, 0)

	shell, err := NewShell(New(NewRouteTable([]string{"oguz", "klees"})), files, WithShellMetrics(s.metrics))
	s.Require().NoError(err)
	s.shell = shell
}

func (s *ShellSuite) serve(method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(requestcontext.WithTime(req.Context(), s.now))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.shell.ServeHTTP(rec, req)
	return rec
}

func (s *ShellSuite) sessionCookies(payload, user string) []*http.Cookie {
	return []*http.Cookie{
		{Name: KeyToken, Value: url.QueryEscape(makeToken(payload))},
		{Name: KeyUser, Value: url.QueryEscape(user)},
	}
}

func (s *ShellSuite) TestAssetsBypassGuard() {
	rec := s.serve(http.MethodGet, "/assets/app.js")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("console.log(1)", rec.Body.String())
	s.Equal(0, testutil.CollectAndCount(s.metrics.Decisions))
}

func (s *ShellSuite) TestAnonymousPageRedirectsToLogin() {
	rec := s.serve(http.MethodGet, "/klees")

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login?from=%2Fklees", rec.Header().Get("Location"))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("redirect_login")))
}

func (s *ShellSuite) TestLoginPageServesIndex() {
	rec := s.serve(http.MethodGet, "/login")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("<html>portal</html>", rec.Body.String())
}

func (s *ShellSuite) TestExpiredCookiesAreCleared() {
	cookies := s.sessionCookies(`{"sub":"1","role":"tenant-member","exp":1}`, `{"role":"tenant-member","tenant":{"slug":"klees"}}`)

	rec := s.serve(http.MethodGet, "/klees", cookies...)

	s.Equal(http.StatusFound, rec.Code)
	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	s.True(cleared[KeyToken])
	s.True(cleared[KeyUser])
}

func (s *ShellSuite) TestMemberRedirectedToOwnTenant() {
	cookies := s.sessionCookies(`{"sub":"1","role":"tenant-member"}`, `{"role":"tenant-member","tenant":{"slug":"klees"}}`)

	rec := s.serve(http.MethodGet, "/oguz", cookies...)

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/klees", rec.Header().Get("Location"))
}

func (s *ShellSuite) TestMemberOnOwnTenantGetsIndex() {
	cookies := s.sessionCookies(`{"sub":"1","role":"tenant-member"}`, `{"role":"tenant-member","tenant":{"slug":"klees"}}`)

	rec := s.serve(http.MethodGet, "/klees/upload", cookies...)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("<html>portal</html>", rec.Body.String())
	s.Equal("no-cache", rec.Header().Get("Cache-Control"))
}

func (s *ShellSuite) TestRejectsWrites() {
	rec := s.serve(http.MethodPost, "/klees")

	s.Equal(http.StatusMethodNotAllowed, rec.Code)
}

func (s *ShellSuite) TestBundleWithoutIndexIsRejected() {
	_, err := NewShell(New(nil), fstest.MapFS{"app.js": {Data: []byte("x")}})

	s.Error(err)
}
