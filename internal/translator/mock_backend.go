package translator

import (
	"context"
	"fmt"
	"time"

	"lingo-load/internal/detector"
	"lingo-load/internal/models"
)

func init() {
	Register("mock", newMockBackend)
}

// MockBackend is a deterministic in-process backend for development and smoke
// deployments without upstream credentials. It marks output instead of
// translating.
type MockBackend struct {
	profile *models.BackendProfile
}

func newMockBackend(profile *models.BackendProfile) (Backend, error) {
	return &MockBackend{profile: profile}, nil
}

// Profile returns the backend configuration.
func (b *MockBackend) Profile() *models.BackendProfile {
	return b.profile
}

// Translate wraps the text with the target language marker.
func (b *MockBackend) Translate(ctx context.Context, text, sourceLang, targetLang, promptHint string) (*BackendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &BackendResult{
		Text:       fmt.Sprintf("[%s] %s", targetLang, text),
		BackendID:  b.profile.Identifier,
		Confidence: b.profile.Reliability,
		LatencyMs:  time.Millisecond.Milliseconds(),
	}, nil
}

// RewriteTone annotates the text with the requested tone.
func (b *MockBackend) RewriteTone(ctx context.Context, text, tone string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if tone == "" {
		return text, nil
	}
	return fmt.Sprintf("(%s) %s", tone, text), nil
}

// DetectLanguage runs the local heuristic detector.
func (b *MockBackend) DetectLanguage(ctx context.Context, text string) (detector.Result, error) {
	if err := ctx.Err(); err != nil {
		return detector.Result{}, err
	}
	return detector.Detect(text), nil
}
