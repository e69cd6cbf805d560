package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"guardian/internal/app"
	"guardian/internal/app/mocks"
	"guardian/internal/kv"
	"guardian/internal/platform/logger"
	"guardian/internal/session"
)

const validPayload = `{
  "access_token": "t1",
  "refresh_token": "r1",
  "user": {
    "id": 7,
    "email": "parent@example.com",
    "first_name": "Meera",
    "last_name": "Rao",
    "user_type": "guardian",
    "associated_id": "S1"
  }
}`

const missingAccessTokenPayload = `{
  "refresh_token": "r1",
  "user": {"id": 7, "first_name": "Meera", "user_type": "guardian", "associated_id": "S1"}
}`

type fixture struct {
	kv       *kv.InMemoryStore
	store    *session.Store
	backend  *mocks.MockBackend
	browser  *mocks.MockBrowser
	notifier *mocks.MockNotifier
	app      *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		kv:       kv.NewInMemory(),
		backend:  mocks.NewMockBackend(ctrl),
		browser:  mocks.NewMockBrowser(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	f.store = session.New(f.kv, session.WithLogger(logger.Discard()))
	f.app = app.New(f.store, f.backend, f.browser, f.notifier,
		app.WithLogger(logger.Discard()),
		app.WithLocation(time.UTC),
	)
	return f
}

// restart simulates a relaunch against the same persisted keys.
func (f *fixture) restart(t *testing.T) app.Route {
	t.Helper()
	f.store = session.New(f.kv, session.WithLogger(logger.Discard()))
	f.app = app.New(f.store, f.backend, f.browser, f.notifier,
		app.WithLogger(logger.Discard()),
		app.WithLocation(time.UTC),
	)
	return f.app.Start(t.Context())
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	f.app.Start(t.Context())
	f.app.Login().SetInput(validPayload)
	require.NoError(t, f.app.Login().SubmitJSON(t.Context()))
}
