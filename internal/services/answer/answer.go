package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/sirupsen/logrus"
)

// Failure classes surfaced to the dispatcher. Both get the same user-facing
// treatment; the distinction exists for logging.
var (
	// ErrUnreachable covers network failures and non-2xx responses.
	ErrUnreachable = errors.New("answer API unreachable")
	// ErrInvalidResponse covers 200 responses without the expected result field.
	ErrInvalidResponse = errors.New("invalid answer API response")
)

// Service asks the question-answering API
type Service interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Client calls the rapidapi chatgpt endpoint
type Client struct {
	baseURL    string
	host       string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new answer client
func NewClient(cfg *config.AnswerConfig, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		host:    cfg.Host,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages  []chatMessage `json:"messages"`
	WebAccess bool          `json:"web_access"`
}

type chatResponse struct {
	Result string `json:"result"`
}

// Ask sends a single-turn question and returns the answer text. No retries:
// a failure is surfaced once and the user must re-ask.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	reqBody := chatRequest{
		Messages:  []chatMessage{{Role: "user", Content: question}},
		WebAccess: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chatgpt"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	c.logger.WithField("url", url).Debug("Sending answer request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrUnreachable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Answer request failed")
		return "", fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if result.Result == "" {
		return "", fmt.Errorf("%w: missing result field", ErrInvalidResponse)
	}

	return result.Result, nil
}
