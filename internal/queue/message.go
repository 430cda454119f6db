package queue

import (
	"fmt"
	"strings"
)

// HandoverMessage is the broker payload asking a human to take over an
// automated interaction.
type HandoverMessage struct {
	RecipientName     string   `json:"recipientName"`
	RecipientEmail    string   `json:"recipientEmail"`
	RecipientRole     string   `json:"recipientRole,omitempty"`
	RecipientPriority int      `json:"recipientPriority,omitempty"`
	ContactID         string   `json:"contactId"`
	ContactName       string   `json:"contactName,omitempty"`
	ConversationID    string   `json:"conversationId,omitempty"`
	Reason            string   `json:"reason,omitempty"`
	TriggeredCriteria []string `json:"triggeredCriteria,omitempty"`
}

func (m HandoverMessage) Validate() error {
	if strings.TrimSpace(m.RecipientEmail) == "" {
		return fmt.Errorf("recipientEmail is required")
	}
	if strings.TrimSpace(m.ContactID) == "" {
		return fmt.Errorf("contactId is required")
	}
	return nil
}
