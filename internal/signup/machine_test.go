package signup

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"jobsy/internal/domain"
)

func TestDraftNeverExposesPassword(t *testing.T) {
	d := Draft{Email: "sara@example.com", Password: "secret1", AgreedToTerms: true, Role: domain.RoleHire}

	if s := fmt.Sprint(d); strings.Contains(s, "secret1") || !strings.Contains(s, "sara@example.com") {
		t.Fatalf("unexpected draft string %q", s)
	}

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal draft: %v", err)
	}
	if strings.Contains(string(raw), "secret1") {
		t.Fatalf("password leaked in json: %s", raw)
	}

	raw, _ = json.Marshal(Draft{Email: "sara@example.com"})
	if strings.Contains(string(raw), "password") {
		t.Fatalf("expected empty password omitted, got %s", raw)
	}
}

func TestStateSteps(t *testing.T) {
	cases := map[State]int{
		CollectingCredentials:   1,
		AcceptingTerms:          2,
		SelectingRole:           3,
		AwaitingAccountCreation: 4,
		AwaitingOtpEntry:        4,
		Verified:                4,
	}
	for state, want := range cases {
		if got := state.Step(); got != want {
			t.Fatalf("%s: expected step %d, got %d", state, want, got)
		}
	}
}
