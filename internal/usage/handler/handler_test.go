package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"automatik/internal/usage/handler/mocks"
	"automatik/internal/usage/models"
	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/logs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestRecordsEntry() {
	entryID := uuid.New()
	at := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	s.service.EXPECT().Record(gomock.Any(), &models.LogRequest{Menu: "upload"}).
		Return(&models.Entry{ID: entryID, Menu: "upload", CreatedAt: at}, nil)

	rec := s.post(`{"menu":" upload "}`)

	s.Equal(http.StatusOK, rec.Code)
	var body map[string]any
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Equal(true, body["ok"])
	s.Equal(entryID.String(), body["id"])
	s.Equal("2025-05-02T09:30:00Z", body["createdAt"])
}

func (s *HandlerSuite) TestMissingMenu() {
	rec := s.post(`{"userId":1,"tenantId":2}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	var body map[string]any
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Equal(models.MenuRequiredMessage, body["error_description"])
}

func (s *HandlerSuite) TestInvalidJSON() {
	rec := s.post(`{"menu":`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestServiceError() {
	s.service.EXPECT().Record(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Validation(models.UnresolvedIdentityMsg, nil))

	rec := s.post(`{"menu":"upload"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "userId/tenantId")
}

func (s *HandlerSuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *HandlerSuite) TestListsEntries() {
	at := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	entryID := uuid.New()
	s.service.EXPECT().Recent(gomock.Any(), id.TenantID(4), 20).
		Return([]*models.Entry{{ID: entryID, UserID: 3, TenantID: 4, Menu: "upload", CreatedAt: at}}, nil)

	rec := s.get("/logs?tenantId=4&limit=20")

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"logs":[{"id":"`+entryID.String()+`","userId":3,"tenantId":4,"menu":"upload","createdAt":"2025-05-02T09:30:00Z"}]}`, rec.Body.String())
}

func (s *HandlerSuite) TestListWithoutFiltersReturnsEmptyArray() {
	s.service.EXPECT().Recent(gomock.Any(), id.TenantID(0), 0).Return(nil, nil)

	rec := s.get("/logs")

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"logs":[]}`, rec.Body.String())
}

func (s *HandlerSuite) TestListRejectsBadQuery() {
	for _, target := range []string{"/logs?tenantId=abc", "/logs?tenantId=0", "/logs?limit=-1", "/logs?limit=x"} {
		s.Run(target, func() {
			s.Equal(http.StatusBadRequest, s.get(target).Code)
		})
	}
}

func (s *HandlerSuite) TestListForbidden() {
	s.service.EXPECT().Recent(gomock.Any(), id.TenantID(5), 0).
		Return(nil, dErrors.New(dErrors.CodeForbidden, "no access to this tenant"))

	s.Equal(http.StatusForbidden, s.get("/logs?tenantId=5").Code)
}
