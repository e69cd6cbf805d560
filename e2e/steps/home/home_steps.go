package home

import (
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is what the home steps need from the scenario world.
type TestContext interface {
	Do(method, path, body string) error
	ResponseField(field string) (any, error)
	StubStudent(id string, status int, body string)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &homeSteps{tc: tc}

	ctx.Step(`^the backend has student "([^"]*)":$`, steps.backendHasStudent)
	ctx.Step(`^the backend returns (\d+) for student "([^"]*)"$`, steps.backendReturns)
	ctx.Step(`^I open the home screen$`, steps.openHome)
	ctx.Step(`^the home screen welcomes "([^"]*)"$`, steps.welcomes)
	ctx.Step(`^the student card shows "([^"]*)" as "([^"]*)"$`, steps.cardShows)
	ctx.Step(`^the home screen shows no student card$`, steps.noStudentCard)
}

type homeSteps struct {
	tc TestContext
}

func (s *homeSteps) backendHasStudent(id string, doc *godog.DocString) error {
	s.tc.StubStudent(id, http.StatusOK, doc.Content)
	return nil
}

func (s *homeSteps) backendReturns(status int, id string) error {
	s.tc.StubStudent(id, status, `{"detail":"Not found."}`)
	return nil
}

func (s *homeSteps) openHome() error {
	return s.tc.Do(http.MethodGet, "/v1/home", "")
}

func (s *homeSteps) welcomes(expected string) error {
	got, err := s.tc.ResponseField("welcome")
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected welcome %q, got %v", expected, got)
	}
	return nil
}

func (s *homeSteps) cardShows(field, expected string) error {
	got, err := s.tc.ResponseField("student." + field)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected student %s %q, got %v", field, expected, got)
	}
	return nil
}

func (s *homeSteps) noStudentCard() error {
	card, err := s.tc.ResponseField("student")
	if err != nil {
		return err
	}
	if card != nil {
		return fmt.Errorf("expected no student card, got %v", card)
	}
	return nil
}
