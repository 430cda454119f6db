package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseAttemptStatusFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    AttemptStatus
		wantErr bool
	}{
		{name: "valid uppercase", input: "SENT", want: AttemptStatusSent},
		{name: "valid lowercase with spaces", input: " scheduled ", want: AttemptStatusScheduled},
		{name: "skipped", input: "skipped", want: AttemptStatusSkipped},
		{name: "invalid", input: "delivered", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAttemptStatusFromString(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseAttemptStatusFromString() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseAttemptStatusFromString() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseAttemptStatusFromString() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAttemptStatusIsTerminal(t *testing.T) {
	t.Parallel()

	if AttemptStatusScheduled.IsTerminal() {
		t.Fatal("SCHEDULED should not be terminal")
	}

	for _, status := range []AttemptStatus{AttemptStatusSent, AttemptStatusFailed, AttemptStatusSkipped} {
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
	}
}

func TestComposeAttemptID(t *testing.T) {
	t.Parallel()

	id := ComposeAttemptID("sched-1", "contact-9", 3, "ab12cd34")
	if id != "sched-1:contact-9:3:ab12cd34" {
		t.Fatalf("ComposeAttemptID() = %q", id)
	}

	other := ComposeAttemptID("sched-1", "contact-9", 3, "ff00ff00")
	if id == other {
		t.Fatal("different salts must produce different ids")
	}
}

func TestAttemptValidate(t *testing.T) {
	t.Parallel()

	base := Attempt{
		ID:            "sched-1:contact-1:1:abcd",
		ScheduleID:    "sched-1",
		ContactID:     "contact-1",
		AttemptNumber: 1,
		TemplateID:    "tpl-welcome",
		ScheduledFor:  time.Unix(1_700_000_000, 0),
		Status:        AttemptStatusScheduled,
	}

	tests := []struct {
		name    string
		mutate  func(*Attempt)
		wantErr bool
	}{
		{name: "valid attempt", mutate: func(a *Attempt) {}},
		{name: "missing schedule id", mutate: func(a *Attempt) { a.ScheduleID = "" }, wantErr: true},
		{name: "missing contact id", mutate: func(a *Attempt) { a.ContactID = " " }, wantErr: true},
		{name: "attempt number below one", mutate: func(a *Attempt) { a.AttemptNumber = 0 }, wantErr: true},
		{name: "missing template id", mutate: func(a *Attempt) { a.TemplateID = "" }, wantErr: true},
		{name: "zero scheduled time", mutate: func(a *Attempt) { a.ScheduledFor = time.Time{} }, wantErr: true},
		{name: "invalid status", mutate: func(a *Attempt) { a.Status = AttemptStatus("DRAFT") }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := base
			tt.mutate(&current)

			err := current.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}
