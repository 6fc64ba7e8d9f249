package handler

//go:generate mockgen -source=handler.go -destination=mocks/upstream_mock.go -package=mocks Upstream

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"automatik/internal/conversion/handler/mocks"
	"automatik/internal/conversion/upstream"
	dErrors "automatik/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	upstream *mocks.MockUpstream
	router   chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.upstream = mocks.NewMockUpstream(s.ctrl)
	resolve := func(tenant string) (Upstream, bool) {
		if tenant == "oguz" {
			return s.upstream, true
		}
		return nil, false
	}
	s.router = chi.NewRouter()
	New(resolve, "excel", slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func reply(status int, body string, header http.Header) *upstream.Response {
	if header == nil {
		header = http.Header{}
	}
	return &upstream.Response{StatusCode: status, Header: header, Body: io.NopCloser(strings.NewReader(body))}
}

func (s *HandlerSuite) multipartBody(field, filename, content string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	s.Require().NoError(err)
	_, err = io.WriteString(part, content)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())
	return &buf, w.FormDataContentType()
}

func (s *HandlerSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decodeStatus(rec *httptest.ResponseRecorder) statusResponse {
	var body statusResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func (s *HandlerSuite) TestProcessRelaysUpstreamReply() {
	body, contentType := s.multipartBody("excel", "fleet.xlsx", "xlsx-bytes")
	s.upstream.EXPECT().Process(gomock.Any(), "telematik/process", gomock.Any()).DoAndReturn(
		func(_ any, _ string, upload upstream.Upload) (*upstream.Response, error) {
			content, _ := io.ReadAll(upload.Body)
			s.Equal("xlsx-bytes", string(content))
			s.Equal("fleet.xlsx", upload.Filename)
			s.Equal("excel", upload.Field)
			return reply(http.StatusAccepted, `{"status":"ok"}`, http.Header{"Content-Type": {"application/json"}}), nil
		})

	req := httptest.NewRequest(http.MethodPost, "/convert/oguz/telematik/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := s.serve(req)

	s.Equal(http.StatusAccepted, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *HandlerSuite) TestProcessWithoutFile() {
	body, contentType := s.multipartBody("other", "fleet.xlsx", "x")

	req := httptest.NewRequest(http.MethodPost, "/convert/oguz/telematik/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := s.serve(req)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(statusResponse{Status: "error", Message: "Excel-Datei fehlt (Feldname: excel)."}, s.decodeStatus(rec))
}

func (s *HandlerSuite) TestProcessNonMultipart() {
	req := httptest.NewRequest(http.MethodPost, "/convert/oguz/telematik/process", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := s.serve(req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestUpstreamTransportFailure() {
	body, contentType := s.multipartBody("excel", "fleet.xlsx", "x")
	s.upstream.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Upstream(0, "Upstream connection refused", nil))

	req := httptest.NewRequest(http.MethodPost, "/convert/oguz/telematik/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := s.serve(req)

	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("Upstream connection refused", s.decodeStatus(rec).Message)
}

func (s *HandlerSuite) TestBreakerOpenKeepsStatus() {
	s.upstream.EXPECT().Health(gomock.Any()).
		Return(nil, dErrors.Upstream(http.StatusServiceUnavailable, "Upstream nicht erreichbar", nil))

	rec := s.serve(httptest.NewRequest(http.MethodGet, "/convert/oguz/health", nil))

	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *HandlerSuite) TestResultForwardsFileHeaders() {
	s.upstream.EXPECT().Result(gomock.Any(), "out.xlsx").Return(reply(http.StatusOK, "file-bytes", http.Header{
		"Content-Type":        {"application/octet-stream"},
		"Content-Disposition": {`attachment; filename="out.xlsx"`},
		"X-Internal":          {"hidden"},
	}), nil)

	rec := s.serve(httptest.NewRequest(http.MethodGet, "/convert/oguz/results/out.xlsx", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("file-bytes", rec.Body.String())
	s.Equal("application/octet-stream", rec.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="out.xlsx"`, rec.Header().Get("Content-Disposition"))
	s.Empty(rec.Header().Get("X-Internal"))
}

func (s *HandlerSuite) TestHealthRelaysStatus() {
	s.upstream.EXPECT().Health(gomock.Any()).Return(reply(http.StatusServiceUnavailable, `{"ok":false}`, nil), nil)

	rec := s.serve(httptest.NewRequest(http.MethodGet, "/convert/oguz/health", nil))

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"ok":false}`, rec.Body.String())
}

func (s *HandlerSuite) TestUnknownTenant() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/convert/klees/health", nil))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("error", s.decodeStatus(rec).Status)
}

func (s *HandlerSuite) TestScopeMiddlewareRuns() {
	router := chi.NewRouter()
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	New(func(string) (Upstream, bool) { return s.upstream, true }, "", slog.Default()).Register(router, deny)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/convert/oguz/health", nil))

	s.Equal(http.StatusForbidden, rec.Code)
}
