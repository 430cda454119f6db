package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultRenderTimeout = 5 * time.Second

type renderRequest struct {
	TemplateID string            `json:"templateId"`
	Variables  map[string]string `json:"variables"`
}

type renderResponse struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// HTTPRenderer renders message templates through the platform's template
// service. A 404 from the service maps to the nil-message "template missing"
// contract rather than an error.
type HTTPRenderer struct {
	client   *resty.Client
	endpoint string
}

func NewHTTPRenderer(endpoint string) (*HTTPRenderer, error) {
	client := resty.New()
	client.SetTimeout(defaultRenderTimeout)
	client.SetRetryCount(0)

	return NewHTTPRendererWithClient(endpoint, client)
}

func NewHTTPRendererWithClient(endpoint string, client *resty.Client) (*HTTPRenderer, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("renderer endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid renderer endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultRenderTimeout)
	}
	client.SetRetryCount(0)

	return &HTTPRenderer{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (r *HTTPRenderer) Render(ctx context.Context, templateID string, variables map[string]string) (*RenderedMessage, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("renderer is not initialized")
	}
	if strings.TrimSpace(templateID) == "" {
		return nil, fmt.Errorf("template id is required")
	}

	var rendered renderResponse
	response, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(renderRequest{TemplateID: templateID, Variables: variables}).
		SetResult(&rendered).
		Post(r.endpoint)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	if response == nil {
		return nil, fmt.Errorf("renderer returned empty response")
	}

	switch {
	case response.StatusCode() == http.StatusNotFound:
		return nil, nil
	case response.IsSuccess():
		return &RenderedMessage{
			Subject: rendered.Subject,
			HTML:    rendered.HTML,
			Text:    rendered.Text,
		}, nil
	default:
		return nil, fmt.Errorf("renderer returned status %d: %s",
			response.StatusCode(), strings.TrimSpace(response.String()))
	}
}
