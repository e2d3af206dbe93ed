package main

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"jobsy/internal/backend/backendtest"
	"jobsy/internal/domain"
	"jobsy/internal/guard"
	"jobsy/internal/i18n"
)

func TestSessionEndedGoesThroughGuard(t *testing.T) {
	catalog, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	fake := backendtest.New()
	fake.SignInAs(fake.AddAccount("sara@example.com", "secret1", domain.RoleHire))

	u := &ui{logger: zap.NewNop(), catalog: catalog, lang: catalog.Default(), client: fake}
	unsubscribe := guard.New(u.logger, fake).Watch(fake, u.sessionChanged)
	defer unsubscribe()

	fake.EndSession()
	if !u.signedOut.Load() {
		t.Fatalf("expected the guard to send the terminal back to login")
	}
}

func TestSessionEndedLookupFailureKeepsState(t *testing.T) {
	catalog, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	fake := backendtest.New()
	fake.CurrentErr = errors.New("backend down")

	u := &ui{logger: zap.NewNop(), catalog: catalog, lang: catalog.Default(), client: fake}
	unsubscribe := guard.New(u.logger, fake).Watch(fake, u.sessionChanged)
	defer unsubscribe()

	fake.EndSession()
	if u.signedOut.Load() {
		t.Fatalf("expected no login redirect when the guard cannot decide")
	}
}
