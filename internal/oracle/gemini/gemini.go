// Package gemini provides a knowledge oracle backed by Google Gemini, through
// either the Gemini API (API key) or Vertex AI (Application Default Credentials).
package gemini

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/logging"
	"github.com/agentstation/carryon/pkg/oracle"
)

// Provider names used in errors.
const (
	ProviderGeminiAPI = "gemini-api"
	ProviderVertex    = "google-vertex"
)

// credentialTimeout bounds Application Default Credentials detection.
const credentialTimeout = 2 * time.Second

// Config configures a Client. Setting Project selects Vertex AI.
type Config struct {
	APIKey   string
	Model    string
	Project  string
	Location string
}

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client implements oracle.Oracle.
type Client struct {
	provider string
	model    string
	generate generateFunc
}

var _ oracle.Oracle = (*Client)(nil)

// New creates a client. It fails with an *errors.AuthenticationError when no
// credential is available for the selected backend.
func New(ctx context.Context, cfg Config) (*Client, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = constants.DefaultGeminiModel
	}

	var (
		clientCfg *genai.ClientConfig
		provider  string
	)
	if cfg.Project != "" {
		provider = ProviderVertex
		clientCfg = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Project,
			Location: location(cfg.Location),
		}
		if cfg.APIKey != "" {
			clientCfg.APIKey = cfg.APIKey
		} else {
			creds, err := detectCredentials(ctx)
			if err != nil {
				return nil, &errors.AuthenticationError{
					Provider: ProviderVertex,
					Method:   "adc",
					Message:  "no Application Default Credentials - run 'gcloud auth application-default login'",
					Err:      err,
				}
			}
			clientCfg.Credentials = creds
		}
	} else {
		provider = ProviderGeminiAPI
		if cfg.APIKey == "" {
			return nil, &errors.AuthenticationError{
				Provider: ProviderGeminiAPI,
				Method:   "api_key",
				Message:  "API key required - set GEMINI_API_KEY",
				Err:      errors.ErrAPIKeyRequired,
			}
		}
		clientCfg = &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  cfg.APIKey,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errors.NewConfigError(provider, "failed to create client", err)
	}

	logging.FromContext(ctx).Debug().
		Str("provider", provider).
		Str("model", model).
		Msg("Gemini oracle configured")

	return &Client{provider: provider, model: model, generate: client.Models.GenerateContent}, nil
}

// Model returns the model used for generation.
func (c *Client) Model() string {
	return c.model
}

// Generate sends one request and returns the reply text. The reply MIME type
// is always application/json; decoding is left to the caller.
func (c *Client) Generate(ctx context.Context, req oracle.Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.generate(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", c.wrap(err)
	}

	text := resp.Text()
	logging.FromContext(ctx).Debug().
		Str("kind", req.Kind).
		Str("model", c.model).
		Int("reply_bytes", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Oracle replied")

	if strings.TrimSpace(text) == "" {
		return "", &errors.APIError{Provider: c.provider, Message: "empty reply", Err: errors.ErrMalformedReply}
	}
	return text, nil
}

// wrap converts genai errors into *errors.APIError so callers can test for
// rate limiting and unavailability.
func (c *Client) wrap(err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return &errors.APIError{Provider: c.provider, StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrTimeout
	}
	return errors.WrapAPI(c.provider, 0, err)
}

// detectCredentials runs Application Default Credentials detection, which
// takes no context, with a short deadline.
func detectCredentials(ctx context.Context) (*auth.Credentials, error) {
	type result struct {
		creds *auth.Credentials
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes: []string{
				"https://www.googleapis.com/auth/cloud-platform",
				"https://www.googleapis.com/auth/generative-language",
			},
		})
		ch <- result{creds: creds, err: err}
	}()

	select {
	case res := <-ch:
		return res.creds, res.err
	case <-time.After(credentialTimeout):
		return nil, errors.ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// location returns loc, falling back to the usual environment variables and
// then to us-central1.
func location(loc string) string {
	candidates := []string{
		loc,
		os.Getenv("GOOGLE_CLOUD_LOCATION"),
		os.Getenv("GOOGLE_CLOUD_REGION"),
		os.Getenv("GOOGLE_VERTEX_LOCATION"),
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return "us-central1"
}
