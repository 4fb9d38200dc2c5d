package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tastebook/backend/internal/model"
)

// TwistService asks the DeepSeek API for one surprising ingredient that
// would elevate a dish. Calls are time-bounded; there is no retry, the next
// qualifying recipe mutation is the retry.
type TwistService struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewTwistService creates a new TwistService instance
func NewTwistService() (*TwistService, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("DEEPSEEK_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY or DEEPSEEK_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("DEEPSEEK_API_URL")
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}

	return &TwistService{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a request to the DeepSeek API
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

// GenerateTwist returns the twist suggestion for the given dish.
func (s *TwistService) GenerateTwist(ctx context.Context, name string, ingredientNames []string) (*model.Twist, error) {
	prompt := fmt.Sprintf("Suggest ONE surprising ingredient to elevate this dish and briefly explain why.\n\nTitle: %s\nIngredients: %s",
		name, strings.Join(ingredientNames, ", "))

	messages := []Message{
		{
			Role:    "system",
			Content: `You are a creative chef. Respond only with JSON like {"twist_ingredient":"","reason":"","how_to_use":""}. All three fields are required.`,
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}

	reqBody := Request{
		Model:    "deepseek-chat",
		Messages: messages,
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature: 0.9, // Higher temperature for more creativity
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	var twist model.Twist
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &twist); err != nil {
		return nil, fmt.Errorf("failed to parse twist: %w", err)
	}
	if twist.TwistIngredient == "" {
		return nil, fmt.Errorf("malformed twist: missing twist_ingredient")
	}

	return &twist, nil
}
