package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/core/ports"
	"github.com/nulzo/task-router-api/internal/httpclient"
)

// Endpoint is one OpenAI-compatible upstream, keyed by provider ID.
type Endpoint struct {
	BaseURL      string
	APIKey       string
	Organization string
}

// Transport speaks the OpenAI chat completions protocol. Most hosted
// providers and local runtimes expose a compatible endpoint, so a
// single transport covers the whole registry.
type Transport struct {
	endpoints map[string]Endpoint
	client    *http.Client
}

func New(endpoints map[string]Endpoint) *Transport {
	return &Transport{
		endpoints: endpoints,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// upstreamErrorResponse mirrors the standard OpenAI error shape
type upstreamErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (t *Transport) Invoke(ctx context.Context, providerID, model string, req *domain.Request) (*ports.TransportResult, error) {
	ep, ok := t.endpoints[providerID]
	if !ok {
		return nil, fmt.Errorf("no endpoint configured for provider %s: %w", providerID, domain.ErrProviderNotFound)
	}

	messages := make([]chatMessage, 0, 2)
	if req.Context != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.Context})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	headers := map[string]string{
		"Authorization": "Bearer " + ep.APIKey,
	}
	if ep.Organization != "" {
		headers["OpenAI-Organization"] = ep.Organization
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(ep.BaseURL, "/"))

	var resp chatResponse
	if err := httpclient.PostJSON(ctx, t.client, url, headers, chatRequest{Model: model, Messages: messages}, &resp); err != nil {
		return nil, t.handleUpstreamError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("provider %s returned no choices", providerID)
	}

	return &ports.TransportResult{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (t *Transport) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return err
	}

	var apiErr upstreamErrorResponse
	if jsonErr := json.Unmarshal(upstreamErr.Body, &apiErr); jsonErr != nil || apiErr.Error.Message == "" {
		return err
	}

	return fmt.Errorf("upstream %d (%s): %s", upstreamErr.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
}
