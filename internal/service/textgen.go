package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forayhq/foray/internal/models"
)

const generationTimeout = 60 * time.Second

// TextGenService generates short texts via the Ollama chat API. Callers
// treat failures as "fall back to deterministic output", so this client
// stays deliberately thin.
type TextGenService struct {
	ollamaURL string
	model     string
	client    *http.Client
}

// NewTextGenService creates a TextGenService for the given Ollama endpoint and model.
func NewTextGenService(ollamaURL, model string) *TextGenService {
	return &TextGenService{
		ollamaURL: strings.TrimRight(ollamaURL, "/"),
		model:     model,
		client:    &http.Client{Timeout: generationTimeout},
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
	Message chatMessage `json:"message"`
}

// Generate sends a single-turn prompt and returns the trimmed reply.
func (s *TextGenService) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ollamaURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path.

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return "", fmt.Errorf("%w: status %d: %s", models.ErrGenerationUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", models.ErrGenerationUnavailable, err)
	}

	return strings.TrimSpace(parsed.Message.Content), nil
}
