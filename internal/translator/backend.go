// Package translator routes translation requests across a fixed pool of model
// backends. Each backend is screened by the compliance gate and the budget
// ledger before invocation; transient invocation failures fall through to the
// next backend in the pool.
package translator

import (
	"context"
	"fmt"
	"sort"

	"lingo-load/internal/detector"
	"lingo-load/internal/models"

	"gorm.io/gorm"
)

// BackendResult is the raw output of one backend translate call.
type BackendResult struct {
	Text       string
	BackendID  string
	Confidence float64
	LatencyMs  int64
}

// Backend is one model provider capability in the routing pool.
//
// Implementations must classify retryable failures with
// utils.CategorizeError semantics (a *utils.CategorizedError with
// ShouldRetry=true) so the router knows when to fall back.
type Backend interface {
	// Profile returns the immutable configuration this backend was built from.
	Profile() *models.BackendProfile

	// Translate converts text from sourceLang to targetLang. promptHint
	// carries optional caller context prepended to the instruction.
	Translate(ctx context.Context, text, sourceLang, targetLang, promptHint string) (*BackendResult, error)

	// RewriteTone adjusts the register of already-translated text. An empty
	// tone returns the text unchanged.
	RewriteTone(ctx context.Context, text, tone string) (string, error)

	// DetectLanguage asks the backend for the source language of text.
	DetectLanguage(ctx context.Context, text string) (detector.Result, error)
}

type backendConstructor func(profile *models.BackendProfile) (Backend, error)

var backendRegistry = make(map[string]backendConstructor)

// Register adds a backend constructor for a backend type. Called from init.
func Register(backendType string, constructor backendConstructor) {
	backendRegistry[backendType] = constructor
}

// NewBackend builds one backend from its profile and wraps it in a circuit
// breaker.
func NewBackend(profile *models.BackendProfile) (Backend, error) {
	constructor, ok := backendRegistry[profile.BackendType]
	if !ok {
		return nil, fmt.Errorf("unknown backend type: %s", profile.BackendType)
	}
	inner, err := constructor(profile)
	if err != nil {
		return nil, err
	}
	return newBreakerBackend(inner), nil
}

// NewPool builds the ordered fallback chain from backend profiles. Disabled
// profiles are skipped; the rest are ordered by SortOrder ascending. The
// order is fixed for the process lifetime.
func NewPool(profiles []models.BackendProfile) ([]Backend, error) {
	sorted := make([]models.BackendProfile, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})

	pool := make([]Backend, 0, len(sorted))
	for i := range sorted {
		if !sorted[i].Enabled {
			continue
		}
		backend, err := NewBackend(&sorted[i])
		if err != nil {
			return nil, fmt.Errorf("failed to build backend %s: %w", sorted[i].Identifier, err)
		}
		pool = append(pool, backend)
	}
	return pool, nil
}

// LoadPoolFromDB reads backend profiles and builds the routing pool.
func LoadPoolFromDB(db *gorm.DB) ([]Backend, error) {
	var profiles []models.BackendProfile
	if err := db.Order("sort_order, id").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to load backend profiles: %w", err)
	}
	return NewPool(profiles)
}
