package httptransport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"guardian/internal/api"
	"guardian/internal/app"
	"guardian/internal/app/mocks"
	"guardian/internal/kv"
	"guardian/internal/platform/logger"
	"guardian/internal/platform/metrics"
	"guardian/internal/session"
	dErrors "guardian/pkg/domain-errors"
	"guardian/pkg/testutil"
)

const pastedResponse = `{"access_token":"t1","refresh_token":"r1","user":{"id":7,"first_name":"Meera","user_type":"guardian","associated_id":"S1"}}`

type HandlerSuite struct {
	suite.Suite
	kv       *kv.InMemoryStore
	backend  *mocks.MockBackend
	browser  *mocks.MockBrowser
	notifier *mocks.MockNotifier
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.kv = kv.NewInMemory()
	s.backend = mocks.NewMockBackend(ctrl)
	s.browser = mocks.NewMockBrowser(ctrl)
	s.notifier = mocks.NewMockNotifier(ctrl)

	m := metrics.New()
	store := session.New(s.kv, session.WithLogger(logger.Discard()), session.WithMetrics(m))
	a := app.New(store, s.backend, s.browser, s.notifier, app.WithLogger(logger.Discard()))
	a.Start(context.Background())
	s.router = NewRouter(NewHandler(a, logger.Discard(), WithMetrics(m)))
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), method, path, body))
}

func (s *HandlerSuite) signIn() {
	rr := s.do(http.MethodPost, "/v1/login/token", pastedResponse)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
}

func (s *HandlerSuite) TestHealthAndMetrics() {
	rr := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"status":"ok"}`, rr.Body.String())
	_, err := uuid.Parse(rr.Header().Get("X-Request-ID"))
	s.NoError(err)

	rr = s.do(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "guardian_session_bootstraps_total")
}

func (s *HandlerSuite) TestHealthCheckFailure() {
	store := session.New(kv.NewInMemory(), session.WithLogger(logger.Discard()))
	a := app.New(store, s.backend, s.browser, s.notifier, app.WithLogger(logger.Discard()))
	router := NewRouter(NewHandler(a, logger.Discard(), WithHealthCheck(func(context.Context) error {
		return errors.New("redis down")
	})))

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/healthz", ""))
	s.Equal(http.StatusServiceUnavailable, rr.Code)
}

func (s *HandlerSuite) TestSession() {
	rr := s.do(http.MethodGet, "/v1/session", "")
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[sessionResponse](s.T(), rr)
	s.Equal(app.RouteLogin, body.Route)
	s.False(body.Authenticated)
	s.Nil(body.User)
}

func (s *HandlerSuite) TestGoogleLogin() {
	s.backend.EXPECT().GoogleLoginURL(gomock.Any()).Return("https://accounts.google.com/auth", nil)
	s.browser.EXPECT().OpenAuthSession(gomock.Any(), "https://accounts.google.com/auth", app.DefaultRedirectURI).Return(app.BrowserDismiss, nil)

	rr := s.do(http.MethodPost, "/v1/login/google", "")
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[sessionResponse](s.T(), rr)
	s.True(body.Login.ModalVisible)
	s.False(body.Login.Loading)
}

func (s *HandlerSuite) TestGoogleLoginBackendDown() {
	s.backend.EXPECT().GoogleLoginURL(gomock.Any()).Return("", dErrors.NewNetwork(http.StatusBadGateway, "google_login request returned status 502", nil))
	s.notifier.EXPECT().Alert(gomock.Any(), app.AlertTitle, app.MsgGoogleAuthFailed)

	rr := s.do(http.MethodPost, "/v1/login/google", "")
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadGateway, string(dErrors.CodeNetwork))
}

func (s *HandlerSuite) TestSubmitToken() {
	s.Run("missing access token is rejected without persisting", func() {
		s.notifier.EXPECT().Alert(gomock.Any(), app.AlertTitle, app.MsgInvalidJSON)
		payload := strings.Replace(pastedResponse, `"access_token":"t1",`, "", 1)

		rr := s.do(http.MethodPost, "/v1/login/token", payload)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeParse))
		s.Empty(s.kv.Snapshot())
	})

	s.Run("empty body", func() {
		s.notifier.EXPECT().Alert(gomock.Any(), app.AlertTitle, app.MsgEmptyInput)

		rr := s.do(http.MethodPost, "/v1/login/token", "")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("valid payload signs in", func() {
		rr := s.do(http.MethodPost, "/v1/login/token", pastedResponse)
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[sessionResponse](s.T(), rr)
		s.Equal(app.RouteHome, body.Route)
		s.True(body.Authenticated)
		s.Equal("S1", body.StudentID)
	})

	s.Run("second submit conflicts", func() {
		rr := s.do(http.MethodPost, "/v1/login/token", pastedResponse)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeInvalidState))
	})
}

func (s *HandlerSuite) TestHome() {
	s.Run("requires a session", func() {
		rr := s.do(http.MethodGet, "/v1/home", "")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})

	s.signIn()

	s.Run("renders the student", func() {
		s.backend.EXPECT().Student(gomock.Any(), "t1", "S1").Return(&api.Student{Name: "Asha Rao", ClassGradeDisplay: "Grade 5"}, nil)

		rr := s.do(http.MethodGet, "/v1/home", "")
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[homeResponse](s.T(), rr)
		s.Equal("Welcome, Meera", body.Welcome)
		s.Require().NotNil(body.Student)
		s.Equal("Asha Rao", body.Student.Name)
		s.Empty(body.Alert)
	})

	s.Run("student not found keeps the page without a card", func() {
		s.backend.EXPECT().Student(gomock.Any(), "t1", "S1").Return(nil, dErrors.NewNetwork(http.StatusNotFound, "student request returned status 404", nil))
		s.notifier.EXPECT().Alert(gomock.Any(), app.AlertTitle, app.MsgStudentFailed)

		rr := s.do(http.MethodGet, "/v1/home", "")
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[homeResponse](s.T(), rr)
		s.Nil(body.Student)
		s.Equal(app.MsgStudentFailed, body.Alert)
		s.Equal("t1", s.kv.Snapshot()[session.KeyAccessToken])
	})
}

func (s *HandlerSuite) TestLogout() {
	s.signIn()

	rr := s.do(http.MethodPost, "/v1/logout", "")
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[sessionResponse](s.T(), rr)
	s.Equal(app.RouteLogin, body.Route)
	s.False(body.Authenticated)
	s.Empty(s.kv.Snapshot())
}

func (s *HandlerSuite) TestUnknownRoute() {
	rr := s.do(http.MethodDelete, "/v1/session", "")
	s.Equal(http.StatusMethodNotAllowed, rr.Code)
}
