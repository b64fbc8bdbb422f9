package enrichment_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/proposalhub/proposalhub-api/internal/enrichment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedClient answers each model from a fixed script and records
// the order models were tried in
type scriptedClient struct {
	responses map[string]string
	errors    map[string]error
	calls     []string
}

func (c *scriptedClient) Generate(_ context.Context, model, _ string) (string, error) {
	c.calls = append(c.calls, model)
	if err, ok := c.errors[model]; ok {
		return "", err
	}
	return c.responses[model], nil
}

func usableContent() string {
	return strings.Repeat("A thorough answer. ", 5)
}

func TestContentGenerator_FirstUsableModelWins(t *testing.T) {
	client := &scriptedClient{
		responses: map[string]string{
			"gpt-4o": usableContent(),
		},
	}
	gen := enrichment.NewContentGenerator(client, []string{"gpt-4o", "gpt-4o-mini"}, time.Second, zap.NewNop())

	content, model, err := gen.Generate(context.Background(), "write an intro")
	require.NoError(t, err)
	assert.Equal(t, usableContent(), content)
	assert.Equal(t, "gpt-4o", model)
	assert.Equal(t, []string{"gpt-4o"}, client.calls)
}

func TestContentGenerator_ShortAnswerAdvancesChain(t *testing.T) {
	client := &scriptedClient{
		responses: map[string]string{
			"gpt-4o":      "I can't help with that.",
			"gpt-4o-mini": usableContent(),
		},
	}
	gen := enrichment.NewContentGenerator(client, []string{"gpt-4o", "gpt-4o-mini"}, time.Second, zap.NewNop())

	content, model, err := gen.Generate(context.Background(), "write an intro")
	require.NoError(t, err)
	assert.Equal(t, usableContent(), content)
	assert.Equal(t, "gpt-4o-mini", model)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, client.calls)
}

func TestContentGenerator_TransientErrorAdvancesChain(t *testing.T) {
	client := &scriptedClient{
		responses: map[string]string{
			"gpt-4o-mini": usableContent(),
		},
		errors: map[string]error{
			"gpt-4o": &enrichment.ProviderError{Provider: "openai", StatusCode: 429},
		},
	}
	gen := enrichment.NewContentGenerator(client, []string{"gpt-4o", "gpt-4o-mini"}, time.Second, zap.NewNop())

	_, model, err := gen.Generate(context.Background(), "write an intro")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", model)
}

func TestContentGenerator_ServerErrorAdvancesChain(t *testing.T) {
	client := &scriptedClient{
		responses: map[string]string{
			"gpt-4o-mini": usableContent(),
		},
		errors: map[string]error{
			"gpt-4o": &enrichment.ProviderError{Provider: "openai", StatusCode: 503},
		},
	}
	gen := enrichment.NewContentGenerator(client, []string{"gpt-4o", "gpt-4o-mini"}, time.Second, zap.NewNop())

	_, model, err := gen.Generate(context.Background(), "write an intro")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", model)
}

func TestContentGenerator_PermanentErrorAbortsChain(t *testing.T) {
	client := &scriptedClient{
		responses: map[string]string{
			"gpt-4o-mini": usableContent(),
		},
		errors: map[string]error{
			"gpt-4o": &enrichment.ProviderError{Provider: "openai", StatusCode: 400},
		},
	}
	gen := enrichment.NewContentGenerator(client, []string{"gpt-4o", "gpt-4o-mini"}, time.Second, zap.NewNop())

	_, _, err := gen.Generate(context.Background(), "write an intro")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed permanently")

	// The second model was never tried
	assert.Equal(t, []string{"gpt-4o"}, client.calls)
}

func TestContentGenerator_ExhaustedChain(t *testing.T) {
	client := &scriptedClient{
		responses: map[string]string{
			"gpt-4o":      "",
			"gpt-4o-mini": "too short",
		},
	}
	gen := enrichment.NewContentGenerator(client, []string{"gpt-4o", "gpt-4o-mini"}, time.Second, zap.NewNop())

	_, _, err := gen.Generate(context.Background(), "write an intro")
	assert.ErrorIs(t, err, enrichment.ErrChainExhausted)
}

func TestContentGenerator_NoModelsConfigured(t *testing.T) {
	gen := enrichment.NewContentGenerator(&scriptedClient{}, nil, time.Second, zap.NewNop())

	_, _, err := gen.Generate(context.Background(), "write an intro")
	assert.ErrorIs(t, err, enrichment.ErrChainExhausted)
}

func TestContentGenerator_CanceledContext(t *testing.T) {
	client := &scriptedClient{
		errors: map[string]error{
			"gpt-4o": context.Canceled,
		},
	}
	gen := enrichment.NewContentGenerator(client, []string{"gpt-4o", "gpt-4o-mini"}, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := gen.Generate(ctx, "write an intro")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"gpt-4o"}, client.calls)
}

func TestProviderError_Transient(t *testing.T) {
	cases := []struct {
		status    int
		transient bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tc := range cases {
		err := &enrichment.ProviderError{Provider: "openai", StatusCode: tc.status}
		assert.Equal(t, tc.transient, err.Transient(), "status %d", tc.status)
	}
}
