package translator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lingo-load/internal/detector"
	app_errors "lingo-load/internal/errors"
	"lingo-load/internal/models"
	"lingo-load/internal/utils"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func init() {
	Register("openai", newOpenAIBackend)
}

// OpenAIBackend drives any chat-completions compatible provider endpoint.
type OpenAIBackend struct {
	profile    *models.BackendProfile
	httpClient *http.Client
}

func newOpenAIBackend(profile *models.BackendProfile) (Backend, error) {
	if profile.UpstreamURL == "" {
		return nil, fmt.Errorf("backend %s: upstream URL is required", profile.Identifier)
	}

	timeout := time.Duration(profile.TargetLatencyMs) * time.Millisecond * 3
	if timeout < 10*time.Second {
		timeout = 10 * time.Second
	}

	return &OpenAIBackend{
		profile:    profile,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Profile returns the backend configuration.
func (b *OpenAIBackend) Profile() *models.BackendProfile {
	return b.profile
}

// Translate performs one chat-completion translation call.
func (b *OpenAIBackend) Translate(ctx context.Context, text, sourceLang, targetLang, promptHint string) (*BackendResult, error) {
	instruction := fmt.Sprintf(
		"Translate the user message from %s to %s. Output only the translation, no commentary.",
		languageOrAuto(sourceLang), targetLang)
	if promptHint != "" {
		instruction = promptHint + "\n" + instruction
	}

	start := time.Now()
	content, err := b.complete(ctx, instruction, text)
	if err != nil {
		return nil, err
	}

	return &BackendResult{
		Text:       content,
		BackendID:  b.profile.Identifier,
		Confidence: b.profile.Reliability,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// RewriteTone adjusts the register of translated text.
func (b *OpenAIBackend) RewriteTone(ctx context.Context, text, tone string) (string, error) {
	if tone == "" {
		return text, nil
	}
	instruction := fmt.Sprintf(
		"Rewrite the user message in a %s tone, keeping its language and meaning. Output only the rewritten text.", tone)
	return b.complete(ctx, instruction, text)
}

// DetectLanguage asks the upstream model for the source language code.
func (b *OpenAIBackend) DetectLanguage(ctx context.Context, text string) (detector.Result, error) {
	instruction := "Identify the language of the user message. Reply with only its BCP-47 language code."
	content, err := b.complete(ctx, instruction, text)
	if err != nil {
		return detector.Result{}, err
	}

	code := strings.ToLower(strings.TrimSpace(content))
	if code == "" {
		return detector.Result{Language: detector.Unknown}, nil
	}
	return detector.Result{
		Language:   code,
		Confidence: b.profile.Reliability,
		Candidates: []detector.Candidate{{Language: code, Score: b.profile.Reliability}},
	}, nil
}

// complete sends one chat-completion request and extracts the reply content.
// Errors are categorized so the router can distinguish transient failures.
func (b *OpenAIBackend) complete(ctx context.Context, instruction, userText string) (string, error) {
	body := `{}`
	body, _ = sjson.Set(body, "model", b.profile.Model)
	body, _ = sjson.Set(body, "temperature", 0.2)
	body, _ = sjson.Set(body, "messages.0.role", "system")
	body, _ = sjson.Set(body, "messages.0.content", instruction)
	body, _ = sjson.Set(body, "messages.1.role", "user")
	body, _ = sjson.Set(body, "messages.1.content", userText)

	url := strings.TrimSuffix(b.profile.UpstreamURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.profile.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", utils.CategorizeError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.CategorizeError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := app_errors.ParseUpstreamError(respBody)
		return "", &utils.CategorizedError{
			Type:        utils.ErrorCategoryNetwork,
			Message:     fmt.Sprintf("backend %s returned status %d: %s", b.profile.Identifier, resp.StatusCode, message),
			StatusCode:  resp.StatusCode,
			ShouldRetry: utils.ShouldRetryHTTPStatus(resp.StatusCode),
		}
	}

	content := gjson.GetBytes(respBody, "choices.0.message.content").String()
	if content == "" {
		return "", &utils.CategorizedError{
			Type:        utils.ErrorCategoryUnknown,
			Message:     fmt.Sprintf("backend %s returned an empty completion", b.profile.Identifier),
			StatusCode:  http.StatusBadGateway,
			ShouldRetry: true,
		}
	}
	return strings.TrimSpace(content), nil
}

func languageOrAuto(code string) string {
	if code == "" {
		return "the detected source language"
	}
	return code
}
