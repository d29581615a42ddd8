package answer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultGeminiBaseURL is the public Gemini REST endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini streams answers from the Gemini API with Google Search grounding.
type Gemini struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
	// MaxOutputTokens is left to the model default when zero.
	MaxOutputTokens int
}

// NewGemini returns a Gemini source with a client bounded by timeout.
func NewGemini(apiKey, model, baseURL string, timeout time.Duration) *Gemini {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &Gemini{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Name implements Source.
func (g *Gemini) Name() string { return "gemini" }

// Stream implements Source.
func (g *Gemini) Stream(ctx context.Context, query string, emit func(string) error) error {
	query, err := CheckQuery(query)
	if err != nil {
		return err
	}
	if g.APIKey == "" {
		return fmt.Errorf("gemini: API key not configured")
	}
	if g.Model == "" {
		return fmt.Errorf("gemini: model not configured")
	}

	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: ResearchPrompt(query)}},
		}},
		Tools: []geminiTool{{GoogleSearch: &struct{}{}}},
	}
	reqBody.GenerationConfig.TopP = 0.95
	reqBody.GenerationConfig.TopK = 64
	reqBody.GenerationConfig.MaxOutputTokens = g.MaxOutputTokens
	reqBody.GenerationConfig.ResponseMimeType = "text/plain"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("gemini: marshal request: %w", err)
	}
	// the key travels in a header so it never shows up in logged URLs
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", g.BaseURL, g.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gemini: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := readLimitedBody(resp.Body, maxErrorBodySize)
		return fmt.Errorf("gemini: status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}
	return readGeminiSSE(ctx, resp.Body, emit)
}

func readGeminiSSE(ctx context.Context, body io.Reader, emit func(string) error) error {
	reader := bufio.NewReader(body)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if emitErr := handleSSELine(line, emit); emitErr != nil {
				return emitErr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("gemini: read stream: %w", err)
		}
	}
}

func handleSSELine(line []byte, emit func(string) error) error {
	lineStr := strings.TrimSpace(string(line))
	if !strings.HasPrefix(lineStr, "data:") {
		return nil
	}
	data := strings.TrimSpace(strings.TrimPrefix(lineStr, "data:"))
	if data == "" || data == "[DONE]" {
		return nil
	}
	var chunk geminiGenerateResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return fmt.Errorf("gemini: decode chunk: %w", err)
	}
	if chunk.Error != nil {
		return fmt.Errorf("gemini: %s", chunk.Error.Message)
	}
	if len(chunk.Candidates) == 0 {
		return nil
	}
	var text strings.Builder
	for _, part := range chunk.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return nil
	}
	return emit(text.String())
}

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	Tools            []geminiTool           `json:"tools,omitempty"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP,omitempty"`
	TopK             int     `json:"topK,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
