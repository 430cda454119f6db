package queue

import "testing"

func TestHandoverMessageValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msg     HandoverMessage
		wantErr bool
	}{
		{
			name: "valid message",
			msg: HandoverMessage{
				RecipientEmail: "sales@example.com",
				ContactID:      "contact-1",
			},
		},
		{
			name:    "missing recipient email",
			msg:     HandoverMessage{ContactID: "contact-1"},
			wantErr: true,
		},
		{
			name:    "missing contact id",
			msg:     HandoverMessage{RecipientEmail: "sales@example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.msg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate() expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestNotificationPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		recipientPriority int
		want              uint8
	}{
		{name: "first responder", recipientPriority: 1, want: 3},
		{name: "zero treated as first", recipientPriority: 0, want: 3},
		{name: "second responder", recipientPriority: 2, want: 2},
		{name: "later responders", recipientPriority: 7, want: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NotificationPriority(tt.recipientPriority); got != tt.want {
				t.Fatalf("NotificationPriority(%d) = %d, want %d", tt.recipientPriority, got, tt.want)
			}
		})
	}
}
