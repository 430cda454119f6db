package provider

import "context"

// RenderedMessage is a template rendered with a variable map.
type RenderedMessage struct {
	Subject string
	HTML    string
	Text    string
}

// OutboundMessage is a rendered message addressed to one contact.
type OutboundMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// SendResult stores transport call metadata for audit and persistence.
type SendResult struct {
	StatusCode int
	Body       string
	MessageID  string
}

// Renderer resolves a template id and variable map into a rendered message.
// A nil message with a nil error means the template does not exist.
type Renderer interface {
	Render(ctx context.Context, templateID string, variables map[string]string) (*RenderedMessage, error)
}

// Transport is the outbound message delivery port.
type Transport interface {
	Send(ctx context.Context, msg OutboundMessage) (*SendResult, error)
}
