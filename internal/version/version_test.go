package version

import "testing"

func TestString(t *testing.T) {
	if got, want := String(), "dev (unknown) built unknown"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInfo(t *testing.T) {
	got := Info()
	if got.Version != Version || got.Commit != Commit || got.BuildTime != BuildTime {
		t.Errorf("Info() = %+v, want package variables", got)
	}
}
