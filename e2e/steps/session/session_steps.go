package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what the session steps need from the scenario world.
type TestContext interface {
	Launch(ctx context.Context)
	Do(method, path, body string) error
	LastStatus() int
	ResponseField(field string) (any, error)
	Stored() map[string]string
	Alerts() []string
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &sessionSteps{tc: tc}

	ctx.Step(`^a fresh install$`, steps.freshInstall)
	ctx.Step(`^the app (?:launches|relaunches)$`, steps.launch)
	ctx.Step(`^the initial screen is "([^"]*)"$`, steps.initialScreenIs)
	ctx.Step(`^nothing is stored$`, steps.nothingStored)
	ctx.Step(`^the stored "([^"]*)" is "([^"]*)"$`, steps.storedValueIs)

	ctx.Step(`^I paste the auth response:$`, steps.pasteAuthResponse)
	ctx.Step(`^I log out$`, steps.logout)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the alert "([^"]*)" is shown$`, steps.alertShown)
	ctx.Step(`^the token modal is open with my input retained$`, steps.modalRetainsInput)
}

type sessionSteps struct {
	tc        TestContext
	lastPaste string
}

func (s *sessionSteps) freshInstall() error {
	if n := len(s.tc.Stored()); n != 0 {
		return fmt.Errorf("expected an empty store, found %d keys", n)
	}
	return nil
}

func (s *sessionSteps) launch(ctx context.Context) error {
	s.tc.Launch(ctx)
	return nil
}

func (s *sessionSteps) initialScreenIs(expected string) error {
	if err := s.tc.Do(http.MethodGet, "/v1/session", ""); err != nil {
		return err
	}
	route, err := s.tc.ResponseField("route")
	if err != nil {
		return err
	}
	if route != expected {
		return fmt.Errorf("expected screen %q, got %v", expected, route)
	}
	return nil
}

func (s *sessionSteps) nothingStored() error {
	if stored := s.tc.Stored(); len(stored) != 0 {
		return fmt.Errorf("expected no persisted keys, found %v", stored)
	}
	return nil
}

func (s *sessionSteps) storedValueIs(key, expected string) error {
	got, ok := s.tc.Stored()[key]
	if !ok {
		return fmt.Errorf("key %q is not stored", key)
	}
	if got != expected {
		return fmt.Errorf("expected %q=%q, got %q", key, expected, got)
	}
	return nil
}

func (s *sessionSteps) pasteAuthResponse(doc *godog.DocString) error {
	s.lastPaste = doc.Content
	return s.tc.Do(http.MethodPost, "/v1/login/token", doc.Content)
}

func (s *sessionSteps) logout() error {
	return s.tc.Do(http.MethodPost, "/v1/logout", "")
}

func (s *sessionSteps) statusShouldBe(expected int) error {
	if got := s.tc.LastStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d", expected, got)
	}
	return nil
}

func (s *sessionSteps) alertShown(message string) error {
	for _, got := range s.tc.Alerts() {
		if got == message {
			return nil
		}
	}
	return fmt.Errorf("alert %q was not shown; saw %s", message, strings.Join(s.tc.Alerts(), " | "))
}

func (s *sessionSteps) modalRetainsInput() error {
	if err := s.tc.Do(http.MethodGet, "/v1/session", ""); err != nil {
		return err
	}
	visible, err := s.tc.ResponseField("login.modal_visible")
	if err != nil {
		return err
	}
	if visible != true {
		return fmt.Errorf("expected the token modal to be open")
	}
	input, err := s.tc.ResponseField("login.input")
	if err != nil {
		return err
	}
	if input != s.lastPaste {
		return fmt.Errorf("expected input to be retained, got %q", input)
	}
	return nil
}
