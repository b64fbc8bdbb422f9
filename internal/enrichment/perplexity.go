package enrichment

import (
	"context"
	"fmt"
	"net/http"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// PerplexityClient uses Perplexity's search-backed models for research
// prompts where fresh public information matters more than prose
// quality
type PerplexityClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewPerplexityClient(apiKey, model string) *PerplexityClient {
	return &PerplexityClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

// Generate satisfies ModelClient. The model argument is ignored,
// Perplexity calls always use the configured research model.
func (c *PerplexityClient) Generate(ctx context.Context, _, prompt string) (string, error) {
	return postChat(ctx, c.httpClient, "perplexity", perplexityBaseURL+"/chat/completions", c.apiKey, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
}

// ResearchPerson asks for a short professional summary of a named
// person, used to fill a contact's background when no scraped profile
// is available
func (c *PerplexityClient) ResearchPerson(ctx context.Context, name, company string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short professional background summary of %s who works at %s. "+
			"Only include publicly available career information. "+
			"If you cannot find this person, answer with an empty string.",
		name, company,
	)
	return c.Generate(ctx, "", prompt)
}
