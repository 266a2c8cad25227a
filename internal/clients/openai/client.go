package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/steve0joo/storymind/internal/pkg/errors"
	"github.com/steve0joo/storymind/internal/pkg/httpx"
	"github.com/steve0joo/storymind/internal/pkg/logger"
)

// ImageGeneration is the result of a successful text-to-image call.
type ImageGeneration struct {
	Bytes         []byte
	MimeType      string
	RevisedPrompt string
}

// Client is the OpenAI API surface the pipeline depends on: embeddings for
// the retrieval index, structured and plain text generation for character
// discovery and profile synthesis, and image generation for portraits.
type Client interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)

	// GenerateJSON requests a json_schema-constrained structured response.
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)

	// GenerateText requests a plain text response.
	GenerateText(ctx context.Context, system string, user string) (string, error)

	// GenerateImage requests a single raster image for prompt at the given
	// aspect ratio (e.g. "1:1", "16:9", "9:16"); an empty aspectRatio uses
	// the client's configured default size.
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (ImageGeneration, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	imageModel string
	imageSize  string
	httpClient *http.Client

	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-5.2"
	}

	embed := strings.TrimSpace(os.Getenv("OPENAI_EMBED_MODEL"))
	if embed == "" {
		embed = "text-embedding-3-small"
	}

	imageModel := strings.TrimSpace(os.Getenv("OPENAI_IMAGE_MODEL"))
	if imageModel == "" {
		imageModel = "gpt-image-1"
	}
	imageSize := strings.TrimSpace(os.Getenv("OPENAI_IMAGE_SIZE"))
	if imageSize == "" {
		imageSize = "1024x1024"
	}

	timeoutSec := 180
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 4
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		embedModel: embed,
		imageModel: imageModel,
		imageSize:  imageSize,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// classifyLLMError wraps err in the matching taxonomy sentinel when it's a
// terminal HTTP failure from the Responses API: a 429 the retry budget
// didn't recover from is a quota error, any other retryable status
// exhausted the same way is transient.
func classifyLLMError(err error) error {
	var httpErr *openAIHTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	switch {
	case httpErr.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", pkgerrors.ErrLLMQuotaExceeded, err)
	case httpx.IsRetryableHTTPStatus(httpErr.StatusCode):
		return fmt.Errorf("%w: %v", pkgerrors.ErrLLMTransient, err)
	default:
		return err
	}
}

// classifyImageError wraps err in the matching taxonomy sentinel for a
// terminal Images API failure. Content-policy rejections surface as a 4xx
// with "content_policy" or "safety" somewhere in the body; any other 4xx is
// treated as a provider refusal.
func classifyImageError(err error) error {
	var httpErr *openAIHTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	body := strings.ToLower(httpErr.Body)
	switch {
	case httpErr.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", pkgerrors.ErrImageQuotaExceeded, err)
	case strings.Contains(body, "content_policy") || strings.Contains(body, "safety"):
		return fmt.Errorf("%w: %v", pkgerrors.ErrImageContentFiltered, err)
	case httpErr.StatusCode >= 400 && httpErr.StatusCode < 500:
		return fmt.Errorf("%w: %v", pkgerrors.ErrImageProviderRefusal, err)
	default:
		return err
	}
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

// -------------------- Embeddings --------------------

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	clean := make([]string, len(inputs))
	for i := range inputs {
		s := strings.TrimSpace(inputs[i])
		if s == "" {
			s = " "
		}
		clean[i] = s
	}

	req := embeddingsRequest{
		Model: c.embedModel,
		Input: clean,
	}

	var resp embeddingsResponse
	if err := c.do(ctx, "POST", "/v1/embeddings", req, &resp); err != nil {
		return nil, err
	}

	out := make([][]float32, len(clean))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = vec
		}
	}

	if hasMissingEmbeddings(out) {
		return nil, fmt.Errorf("openai embeddings missing indices: requested=%d returned=%d model=%s", len(clean), len(resp.Data), c.embedModel)
	}

	return out, nil
}

func hasMissingEmbeddings(v [][]float32) bool {
	for i := range v {
		if v[i] == nil || len(v[i]) == 0 {
			return true
		}
	}
	return false
}

// -------------------- Images API --------------------

type imagesGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"` // b64_json|url
}

type imagesGenerationResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// aspectRatioSizes maps a spec-level aspect ratio to the pixel-dimension
// size string gpt-image-1 accepts. Ratios not in this table fall back to
// the client's configured default size.
var aspectRatioSizes = map[string]string{
	"1:1":  "1024x1024",
	"16:9": "1536x1024",
	"9:16": "1024x1536",
}

func (c *client) sizeForAspectRatio(aspectRatio string) string {
	aspectRatio = strings.TrimSpace(aspectRatio)
	if size, ok := aspectRatioSizes[aspectRatio]; ok {
		return size
	}
	return strings.TrimSpace(c.imageSize)
}

func (c *client) GenerateImage(ctx context.Context, prompt, aspectRatio string) (ImageGeneration, error) {
	var out ImageGeneration
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return out, errors.New("image prompt required")
	}
	if strings.TrimSpace(c.imageModel) == "" {
		return out, errors.New("missing OPENAI_IMAGE_MODEL")
	}

	req := imagesGenerationRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           c.sizeForAspectRatio(aspectRatio),
		ResponseFormat: "b64_json",
	}

	var resp imagesGenerationResponse
	if err := c.do(ctx, "POST", "/v1/images/generations", req, &resp); err != nil {
		return out, classifyImageError(err)
	}
	if len(resp.Data) == 0 {
		return out, errors.New("no image returned")
	}
	item := resp.Data[0]
	out.RevisedPrompt = strings.TrimSpace(item.RevisedPrompt)
	b64 := strings.TrimSpace(item.B64JSON)
	if b64 == "" {
		return out, errors.New("image response missing b64_json")
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil || len(raw) == 0 {
		return out, fmt.Errorf("decode image base64: %w", err)
	}
	out.Bytes = raw
	out.MimeType = "image/png"
	return out, nil
}

// -------------------- Responses API (text + structured) --------------------

type responsesRequest struct {
	Model string `json:"model"`

	Instructions string `json:"instructions,omitempty"`

	Input []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"input"`

	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`

	Temperature float64 `json:"temperature"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}

	req := responsesRequest{
		Model: c.model,
		Input: []struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		}{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
		return nil, classifyLLMError(err)
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", resp.Refusal)
	}

	jsonText := extractOutputText(resp)
	if strings.TrimSpace(jsonText) == "" {
		return nil, fmt.Errorf("no output_text found in response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w; text=%s", err, jsonText)
	}
	return obj, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		}{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
	}

	var resp responsesResponse
	if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
		return "", classifyLLMError(err)
	}
	if resp.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", resp.Refusal)
	}

	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no output_text found in response")
	}
	return text, nil
}
