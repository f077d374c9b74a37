package pitch

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/CelebrityPunks/date-genie/internal/restclient"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	defaultModel  = "gpt-4o-mini"
)

var errEmptyCompletion = errors.New("empty completion content")

// chatMessage is a single message in a chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the JSON body for the chat completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// OpenAIClient implements TextProvider against the OpenAI chat completions API.
type OpenAIClient struct {
	client *restclient.Client
	apiKey string
	model  string
}

// NewOpenAIClient creates a completion client using the default model.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	c := &OpenAIClient{apiKey: apiKey, model: defaultModel}
	c.client = restclient.New(restclient.DefaultConfig("openai", openAIBaseURL), c.setHeaders)
	return c
}

// NewOpenAIClientWithHTTPClient creates a completion client with a custom
// HTTP client, used by tests to point at a fake provider.
func NewOpenAIClientWithHTTPClient(apiKey string, httpClient *http.Client) *OpenAIClient {
	c := &OpenAIClient{apiKey: apiKey, model: defaultModel}
	c.client = restclient.NewWithHTTPClient(httpClient, restclient.DefaultConfig("openai", openAIBaseURL), c.setHeaders)
	return c
}

// SetBaseURL allows pointing the client at a non-production endpoint.
func (c *OpenAIClient) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// SetModel overrides the completion model.
func (c *OpenAIClient) SetModel(model string) {
	if model != "" {
		c.model = model
	}
}

func (c *OpenAIClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

// Complete sends the prompts and returns the first choice's content.
// An empty completion is an error so callers fall back rather than cache
// a blank pitch.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	resp, err := c.client.DoRaw(ctx, restclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body: chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			MaxTokens:   500,
			Temperature: 0.7,
		},
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(gjson.GetBytes(resp.Body, "choices.0.message.content").String())
	if content == "" {
		return "", errEmptyCompletion
	}
	return content, nil
}
