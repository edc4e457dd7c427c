package llm

import (
	"context"
	"testing"
)

var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*GeminiClient)(nil)
)

func TestNewClientNone(t *testing.T) {
	c, err := NewClient(context.Background(), ProviderNone, "")
	if err != nil || c != nil {
		t.Fatalf("none provider: client=%v err=%v", c, err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	for _, p := range []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		if _, err := NewClient(context.Background(), p, ""); err == nil {
			t.Fatalf("%s: expected missing key error", p)
		}
	}
}

func TestNewClientUnknown(t *testing.T) {
	if _, err := NewClient(context.Background(), "bard", "key"); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestOpenAIRequestPrependsSystem(t *testing.T) {
	c, err := NewOpenAIClient("sk-test")
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	r := c.request(&CompletionRequest{
		System:   "be brief",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	}, true)
	if len(r.Messages) != 2 || r.Messages[0].Role != "system" || r.Messages[0].Content != "be brief" {
		t.Fatalf("messages=%+v", r.Messages)
	}
	if r.Model != defaultOpenAIModel || r.MaxTokens != 1024 || !r.Stream {
		t.Fatalf("request=%+v", r)
	}
}
