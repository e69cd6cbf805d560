package app_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"guardian/internal/app"
	"guardian/internal/session"
	dErrors "guardian/pkg/domain-errors"
	"guardian/pkg/testutil"
)

func TestSessionLifecycleScenarios(t *testing.T) {
	testutil.Given(t, "a fresh install", func(t *testing.T) {
		f := newFixture(t)

		testutil.When(t, "the app launches", func(t *testing.T) {
			route := f.app.Start(t.Context())

			testutil.Then(t, "the session is empty and the login screen shows", func(t *testing.T) {
				assert.True(t, f.app.Session().IsZero())
				assert.Equal(t, app.RouteLogin, route)
				assert.Equal(t, app.RouteLogin, f.app.Navigator().Route())
			})
		})
	})

	testutil.Given(t, "a guardian who pasted a valid auth response", func(t *testing.T) {
		f := newFixture(t)
		f.signIn(t)

		testutil.When(t, "the app relaunches", func(t *testing.T) {
			route := f.restart(t)

			testutil.Then(t, "the session is restored and home shows", func(t *testing.T) {
				s := f.app.Session()
				assert.Equal(t, "t1", s.AccessToken)
				assert.Equal(t, "r1", s.RefreshToken)
				assert.Equal(t, "S1", s.StudentID)
				require.NotNil(t, s.User)
				assert.Equal(t, "Meera", s.User.FirstName)
				assert.Equal(t, app.RouteHome, route)
			})
		})
	})

	testutil.Given(t, "an authenticated session", func(t *testing.T) {
		f := newFixture(t)
		f.signIn(t)

		testutil.When(t, "the guardian logs out and the app relaunches", func(t *testing.T) {
			require.NoError(t, f.app.Home().Logout(t.Context()))
			assert.Equal(t, app.RouteLogin, f.app.Navigator().Route())
			route := f.restart(t)

			testutil.Then(t, "nothing is persisted and login shows", func(t *testing.T) {
				assert.True(t, f.app.Session().IsZero())
				assert.Empty(t, f.kv.Snapshot())
				assert.Equal(t, app.RouteLogin, route)
			})
		})
	})

	testutil.Given(t, "a student that the backend cannot find", func(t *testing.T) {
		f := newFixture(t)
		f.signIn(t)
		before := f.app.Session()

		f.backend.EXPECT().Student(gomock.Any(), "t1", "S1").
			Return(nil, dErrors.NewNetwork(http.StatusNotFound, "student request returned status 404", nil))
		f.notifier.EXPECT().Alert(gomock.Any(), app.AlertTitle, app.MsgStudentFailed)

		testutil.When(t, "home loads", func(t *testing.T) {
			view, err := f.app.Home().Load(t.Context())

			testutil.Then(t, "no student card is shown and the session is unchanged", func(t *testing.T) {
				require.Error(t, err)
				assert.Nil(t, view.Student)
				assert.Equal(t, "Welcome, Meera", view.Welcome)
				assert.Equal(t, before, f.app.Session())
				assert.Equal(t, session.StateAuthenticated, f.store.State())
			})
		})
	})

	testutil.Given(t, "pasted JSON without an access token", func(t *testing.T) {
		f := newFixture(t)
		f.app.Start(t.Context())
		f.app.Login().OpenModal()
		f.app.Login().SetInput(missingAccessTokenPayload)
		f.notifier.EXPECT().Alert(gomock.Any(), app.AlertTitle, app.MsgInvalidJSON)

		testutil.When(t, "the guardian submits", func(t *testing.T) {
			err := f.app.Login().SubmitJSON(t.Context())

			testutil.Then(t, "nothing is committed and the modal keeps the input", func(t *testing.T) {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeParse))
				assert.Empty(t, f.kv.Snapshot())
				state := f.app.Login().State()
				assert.True(t, state.ModalVisible)
				assert.Equal(t, missingAccessTokenPayload, state.Input)
				assert.Equal(t, app.RouteLogin, f.app.Navigator().Route())
			})
		})
	})
}
