package relay

import "testing"

func TestGroupRef(t *testing.T) {
	byName := GroupByName("Clientes")
	if byName.Name() != "Clientes" || byName.ID() != "" {
		t.Errorf("GroupByName = name %q id %q, want Clientes/empty", byName.Name(), byName.ID())
	}
	if byName.String() != "Clientes" {
		t.Errorf("String() = %q, want Clientes", byName.String())
	}

	byID := GroupByID("g-1")
	if byID.ID() != "g-1" || byID.Name() != "" {
		t.Errorf("GroupByID = name %q id %q, want empty/g-1", byID.Name(), byID.ID())
	}
	if byID.String() != "id:g-1" {
		t.Errorf("String() = %q, want id:g-1", byID.String())
	}

	var zero GroupRef
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if byName.IsZero() || byID.IsZero() {
		t.Error("populated refs must not report IsZero")
	}
}

func TestOutcomeString(t *testing.T) {
	cases := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeApply, "apply"},
		{OutcomeIgnored, "ignored"},
		{OutcomeSuppressed, "suppressed"},
		{Outcome(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.outcome.String(); got != tc.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tc.outcome, got, tc.want)
		}
	}
}
