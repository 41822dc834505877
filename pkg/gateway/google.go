package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"nebula/pkg/logger"
	"nebula/pkg/telemetry"
)

// DefaultEndpoint is the generativelanguage API base.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

const defaultTimeout = 30 * time.Second

// Google relays prompts to the generativelanguage generateContent endpoint.
type Google struct {
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
	client   *fasthttp.Client
}

// NewGoogle builds a client for the given endpoint base, API key and model.
// A zero timeout falls back to the default.
func NewGoogle(endpoint, apiKey, model string, timeout time.Duration) *Google {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Google{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		timeout:  timeout,
		client:   &fasthttp.Client{},
	}
}

// Configured reports whether an API key is present.
func (g *Google) Configured() bool { return g.apiKey != "" }

type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

// Generate posts the prompt and returns the first candidate's text. The
// request times out at the client timeout or the context deadline,
// whichever is sooner.
func (g *Google) Generate(ctx context.Context, text string) (string, error) {
	start := time.Now()
	defer func() {
		telemetry.GatewayDuration.Observe(time.Since(start).Seconds())
	}()

	var payload generateRequest
	payload.Contents = make([]struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}, 1)
	payload.Contents[0].Parts = []struct {
		Text string `json:"text"`
	}{{Text: text}}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-goog-api-key", g.apiKey)
	req.SetBody(buf.B)

	timeout := g.timeout
	if d, ok := ctx.Deadline(); ok {
		if rem := time.Until(d); rem < timeout {
			timeout = rem
		}
	}
	if err := g.client.DoTimeout(req, resp, timeout); err != nil {
		logger.Warn("gateway_request_failed", "model", g.model, "error", err)
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	return parseGenerateResponse(resp.Body())
}

// parseGenerateResponse maps the provider's response shape onto the two-field
// contract the rest of the service depends on: a reply string or an error.
func parseGenerateResponse(body []byte) (string, error) {
	var out struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("invalid gateway response: %w", err)
	}
	if out.Error != nil {
		return "", &APIError{Message: out.Error.Message}
	}
	if len(out.Candidates) > 0 && len(out.Candidates[0].Content.Parts) > 0 {
		if t := out.Candidates[0].Content.Parts[0].Text; t != "" {
			return t, nil
		}
	}
	return "No response", nil
}
