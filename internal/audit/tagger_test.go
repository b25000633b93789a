package audit_test

import (
	"testing"

	"github.com/reserva-app/reserva/internal/audit"
)

func TestTaggerRegisterAndLookup(t *testing.T) {
	tagger := audit.NewTagger()
	tag := audit.Tag{Entity: "appointment", Action: "create", Description: "booked an appointment"}
	if err := tagger.Register("appointments.create", tag); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := tagger.Tag("appointments.create")
	if !ok {
		t.Fatal("expected tag for registered operation")
	}
	if got != tag {
		t.Fatalf("tag mismatch: %+v", got)
	}
	if _, ok := tagger.Tag("appointments.list"); ok {
		t.Fatal("untagged operation must not resolve")
	}
}

func TestTaggerRejectsInvalidRegistrations(t *testing.T) {
	tagger := audit.NewTagger()
	if err := tagger.Register("", audit.Tag{Entity: "e", Action: "a"}); err == nil {
		t.Fatal("expected error for empty operation id")
	}
	if err := tagger.Register("op", audit.Tag{Action: "a"}); err == nil {
		t.Fatal("expected error for missing entity")
	}
	if err := tagger.Register("op", audit.Tag{Entity: "e"}); err == nil {
		t.Fatal("expected error for missing action")
	}
	tagger.MustRegister("op", audit.Tag{Entity: "e", Action: "a"})
	if err := tagger.Register("op", audit.Tag{Entity: "e", Action: "a"}); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}
