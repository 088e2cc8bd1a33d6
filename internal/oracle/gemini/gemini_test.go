package gemini

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/oracle"
)

func reply(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)

	var authErr *errors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ProviderGeminiAPI, authErr.Provider)
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
	assert.True(t, errors.IsOracleUnavailable(err))
}

func TestNewDefaultsModel(t *testing.T) {
	c, err := New(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultGeminiModel, c.Model())

	c, err = New(context.Background(), Config{APIKey: "test-key", Model: "gemini-2.5-pro"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", c.Model())
}

func TestGenerate(t *testing.T) {
	var (
		gotModel    string
		gotContents []*genai.Content
		gotConfig   *genai.GenerateContentConfig
	)
	c := &Client{provider: ProviderGeminiAPI, model: "gemini-test", generate: func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel, gotContents, gotConfig = model, contents, cfg
		return reply(`{"ok":true}`), nil
	}}

	text, err := c.Generate(context.Background(), oracle.Request{
		Kind:              oracle.KindItem,
		SystemInstruction: "reply with JSON",
		Prompt:            `"보조배터리"`,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	assert.Equal(t, "gemini-test", gotModel)
	require.Len(t, gotContents, 1)
	assert.Equal(t, `"보조배터리"`, gotContents[0].Parts[0].Text)
	assert.Equal(t, "application/json", gotConfig.ResponseMIMEType)
	require.NotNil(t, gotConfig.SystemInstruction)
	assert.Equal(t, "reply with JSON", gotConfig.SystemInstruction.Parts[0].Text)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		resp      *genai.GenerateContentResponse
		rateLimit bool
		timeout   bool
	}{
		{name: "rate limited", err: genai.APIError{Code: 429, Message: "quota"}, rateLimit: true},
		{name: "server error", err: genai.APIError{Code: 503, Message: "overloaded"}},
		{name: "transport", err: fmt.Errorf("dial tcp: connection refused")},
		{name: "deadline", err: context.DeadlineExceeded, timeout: true},
		{name: "empty reply", resp: reply("  ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{provider: ProviderGeminiAPI, model: "m", generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return tt.resp, tt.err
			}}

			_, err := c.Generate(context.Background(), oracle.Request{Prompt: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.rateLimit, errors.IsRateLimited(err))
			if tt.timeout {
				assert.ErrorIs(t, err, errors.ErrTimeout)
				return
			}
			var apiErr *errors.APIError
			assert.ErrorAs(t, err, &apiErr)
		})
	}
}

func TestLocation(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_LOCATION", "")
	t.Setenv("GOOGLE_CLOUD_REGION", "")
	t.Setenv("GOOGLE_VERTEX_LOCATION", "")
	assert.Equal(t, "us-central1", location(""))

	t.Setenv("GOOGLE_CLOUD_REGION", "asia-northeast3")
	assert.Equal(t, "asia-northeast3", location(""))
	assert.Equal(t, "europe-west4", location("europe-west4"))
}
