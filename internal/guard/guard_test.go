package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"jobsy/internal/backend"
	"jobsy/internal/backend/backendtest"
	"jobsy/internal/domain"
)

func TestGuardCheck(t *testing.T) {
	t.Run("no session goes to login", func(t *testing.T) {
		fake := backendtest.New()
		g := New(zap.NewNop(), fake)

		dest, err := g.Check(context.Background(), fake)
		if err != nil || dest != Login {
			t.Fatalf("expected login, got %q err=%v", dest, err)
		}
		if fake.Calls("find") != 0 {
			t.Fatalf("expected no profile lookup without session")
		}
	})

	t.Run("profile found goes to dashboard", func(t *testing.T) {
		fake := backendtest.New()
		user := fake.AddAccount("sara@example.com", "secret1", domain.RoleHire)
		fake.SignInAs(user)
		fake.PutProfile(domain.Profile{ID: user.UserID})
		g := New(zap.NewNop(), fake)

		dest, err := g.Check(context.Background(), fake)
		if err != nil || dest != Dashboard {
			t.Fatalf("expected dashboard, got %q err=%v", dest, err)
		}
	})

	t.Run("profile missing goes to complete profile", func(t *testing.T) {
		fake := backendtest.New()
		fake.SignInAs(fake.AddAccount("sara@example.com", "secret1", domain.RoleWork))
		g := New(zap.NewNop(), fake)

		dest, err := g.Check(context.Background(), fake)
		if err != nil || dest != CompleteProfile {
			t.Fatalf("expected complete-profile, got %q err=%v", dest, err)
		}
	})

	t.Run("lookup error does not navigate", func(t *testing.T) {
		fake := backendtest.New()
		fake.SignInAs(fake.AddAccount("sara@example.com", "secret1", domain.RoleWork))
		fake.FindErr = backend.ErrUnexpected
		g := New(zap.NewNop(), fake)

		dest, err := g.Check(context.Background(), fake)
		if dest != None {
			t.Fatalf("expected no destination, got %q", dest)
		}
		if !errors.Is(err, ErrLookupFailed) || !errors.Is(err, backend.ErrUnexpected) {
			t.Fatalf("expected wrapped lookup error, got %v", err)
		}
	})

	t.Run("current user error does not navigate", func(t *testing.T) {
		fake := backendtest.New()
		fake.CurrentErr = errors.New("network down")
		g := New(zap.NewNop(), fake)

		dest, err := g.Check(context.Background(), fake)
		if dest != None || !errors.Is(err, ErrLookupFailed) {
			t.Fatalf("expected lookup failure, got %q err=%v", dest, err)
		}
	})
}

func TestGuardWatch(t *testing.T) {
	fake := backendtest.New()
	fake.SignInAs(fake.AddAccount("sara@example.com", "secret1", domain.RoleHire))
	g := New(zap.NewNop(), fake)

	var got []Destination
	unsubscribe := g.Watch(fake, func(dest Destination, err error) {
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
		got = append(got, dest)
	})

	fake.EndSession()
	if len(got) != 1 || got[0] != Login {
		t.Fatalf("expected one login redirect, got %v", got)
	}

	unsubscribe()
	fake.EndSession()
	if len(got) != 1 {
		t.Fatalf("expected no callbacks after unsubscribe, got %v", got)
	}
	if fake.Subscribers() != 0 {
		t.Fatalf("expected subscription released")
	}
}

// hungIdentity no responde hasta que se cancela el contexto.
type hungIdentity struct {
	*backendtest.Fake
}

func (h hungIdentity) CurrentUser(ctx context.Context) (domain.AccountIdentity, bool, error) {
	<-ctx.Done()
	return domain.AccountIdentity{}, false, ctx.Err()
}

func TestGuardWatchBoundsTheRecheck(t *testing.T) {
	fake := backendtest.New()
	identity := hungIdentity{Fake: fake}
	g := New(zap.NewNop(), fake)
	g.watchTimeout = 20 * time.Millisecond

	var (
		dest Destination
		err  error
	)
	unsubscribe := g.Watch(identity, func(d Destination, e error) {
		dest, err = d, e
	})
	defer unsubscribe()

	fake.EndSession()
	if dest != None || !errors.Is(err, ErrLookupFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected bounded lookup failure, got %q err=%v", dest, err)
	}
}

func TestGuardCheckUser(t *testing.T) {
	fake := backendtest.New()
	account := fake.AddAccount("sara@example.com", "secret1", domain.RoleWork)
	fake.SignInAs(account)
	g := New(zap.NewNop(), fake)

	user, dest, err := g.CheckUser(context.Background(), fake)
	if err != nil || dest != CompleteProfile || user.UserID != account.UserID {
		t.Fatalf("expected complete-profile for %s, got %q user=%+v err=%v", account.UserID, dest, user, err)
	}

	fake.EndSession()
	user, dest, err = g.CheckUser(context.Background(), fake)
	if err != nil || dest != Login || user.UserID != "" {
		t.Fatalf("expected login without user, got %q user=%+v err=%v", dest, user, err)
	}
}
