package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/sirupsen/logrus"
)

// Translator converts text between languages. Failures are non-fatal by
// design: the caller falls back to the untranslated text.
type Translator interface {
	// Translate translates text from source language to target language.
	// sourceLang and targetLang are ISO 639-1 codes (e.g. "en", "ru").
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// GoogleTranslator uses the public gtx translation endpoint, the same backend
// the reference deployment relied on.
type GoogleTranslator struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewGoogleTranslator creates a new translator client
func NewGoogleTranslator(cfg *config.TranslateConfig, logger *logrus.Logger) *GoogleTranslator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &GoogleTranslator{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Translate translates text via the gtx endpoint.
func (t *GoogleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sourceLang)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	reqURL := fmt.Sprintf("%s/translate_a/single?%s", t.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read translation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation request failed with status %d", resp.StatusCode)
	}

	translated, err := parseResponse(body)
	if err != nil {
		return "", err
	}

	t.logger.WithFields(logrus.Fields{
		"source": sourceLang,
		"target": targetLang,
	}).Debug("Text translated")

	return translated, nil
}

// parseResponse extracts the translated segments from the nested-array payload
// the gtx endpoint returns: [[["<translated>","<original>",...],...],...].
func parseResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to parse translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("unexpected translation response shape: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("translation response contained no text")
	}
	return sb.String(), nil
}
