package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lingo-load/internal/budget"
	"lingo-load/internal/compliance"
	"lingo-load/internal/detector"
	app_errors "lingo-load/internal/errors"
	"lingo-load/internal/models"
	"lingo-load/internal/store"
	"lingo-load/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend scripts per-call outcomes so router policy can be asserted
// without HTTP.
type stubBackend struct {
	profile        *models.BackendProfile
	translateErr   error
	rewriteErr     error
	translateCalls int
	detectResult   detector.Result
}

func (s *stubBackend) Profile() *models.BackendProfile { return s.profile }

func (s *stubBackend) Translate(ctx context.Context, text, sourceLang, targetLang, promptHint string) (*BackendResult, error) {
	s.translateCalls++
	if s.translateErr != nil {
		return nil, s.translateErr
	}
	return &BackendResult{
		Text:       fmt.Sprintf("%s:%s", targetLang, text),
		BackendID:  s.profile.Identifier,
		Confidence: 0.9,
		LatencyMs:  5,
	}, nil
}

func (s *stubBackend) RewriteTone(ctx context.Context, text, tone string) (string, error) {
	if s.rewriteErr != nil {
		return "", s.rewriteErr
	}
	if tone == "" {
		return text, nil
	}
	return tone + "!" + text, nil
}

func (s *stubBackend) DetectLanguage(ctx context.Context, text string) (detector.Result, error) {
	return s.detectResult, nil
}

func transientErr() error {
	return &utils.CategorizedError{
		Type:        utils.ErrorCategoryTimeout,
		Message:     "backend timeout",
		StatusCode:  http.StatusGatewayTimeout,
		ShouldRetry: true,
	}
}

func newStub(id string, sortOrder int) *stubBackend {
	return &stubBackend{
		profile: &models.BackendProfile{
			Identifier:  id,
			BackendType: "mock",
			CostPerChar: 10,
			SortOrder:   sortOrder,
		},
		detectResult: detector.Result{Language: "en", Confidence: 0.9},
	}
}

func newTestRouter(t *testing.T, dailyCap int64, gate *compliance.Gate, backends ...Backend) (*Router, *budget.Ledger) {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	ledger := budget.NewLedger(s, dailyCap)
	if gate == nil {
		gate = compliance.NewGate()
	}
	return NewRouter(backends, gate, ledger, nil), ledger
}

func TestTranslate_FirstBackendWins(t *testing.T) {
	first := newStub("primary", 0)
	second := newStub("secondary", 1)
	router, _ := newTestRouter(t, 0, nil, first, second)

	result, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "fr", TenantID: "contoso",
	})

	require.NoError(t, err)
	assert.Equal(t, "primary", result.BackendID)
	assert.Equal(t, "fr:hello", result.Text)
	assert.Equal(t, 1, first.translateCalls)
	assert.Zero(t, second.translateCalls)
}

func TestTranslate_TransientFallbackChain(t *testing.T) {
	first := newStub("a", 0)
	first.translateErr = transientErr()
	second := newStub("b", 1)
	second.translateErr = transientErr()
	third := newStub("c", 2)
	router, _ := newTestRouter(t, 0, nil, first, second, third)

	result, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.NoError(t, err)
	assert.Equal(t, "c", result.BackendID)
	// Exactly one invocation per failed backend plus the winner.
	assert.Equal(t, 1, first.translateCalls)
	assert.Equal(t, 1, second.translateCalls)
	assert.Equal(t, 1, third.translateCalls)
}

func TestTranslate_PoolExhausted(t *testing.T) {
	first := newStub("a", 0)
	first.translateErr = transientErr()
	second := newStub("b", 1)
	second.translateErr = transientErr()
	router, _ := newTestRouter(t, 0, nil, first, second)

	_, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.Error(t, err)
	assert.True(t, app_errors.Is(err, app_errors.ErrNoAvailableBackend))
}

func TestTranslate_TerminalErrorPropagatesImmediately(t *testing.T) {
	first := newStub("a", 0)
	first.translateErr = errors.New("model refused the prompt")
	second := newStub("b", 1)
	router, _ := newTestRouter(t, 0, nil, first, second)

	_, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.Error(t, err)
	assert.True(t, app_errors.Is(err, app_errors.ErrBackendInvocation))
	assert.Zero(t, second.translateCalls, "terminal errors must not trigger fallback")
}

func TestTranslate_BudgetRefusalAborts(t *testing.T) {
	first := newStub("a", 0)
	second := newStub("b", 1)
	// Cap below the estimated cost of the 5-rune text (5 * 10).
	router, _ := newTestRouter(t, 40, nil, first, second)

	_, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.Error(t, err)
	assert.True(t, app_errors.Is(err, app_errors.ErrBudgetExceeded))
	assert.Zero(t, first.translateCalls)
	assert.Zero(t, second.translateCalls, "budget refusal is not a per-backend condition")
}

func TestTranslate_TransientFailureReleasesReservation(t *testing.T) {
	first := newStub("a", 0)
	first.translateErr = transientErr()
	second := newStub("b", 1)
	router, ledger := newTestRouter(t, 1000, nil, first, second)

	result, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(50), result.CostMicros)

	// Only the winning backend's reservation remains spent.
	spent, err := ledger.Spent("contoso")
	require.NoError(t, err)
	assert.Equal(t, int64(50), spent)
}

func TestTranslate_ComplianceSkipsToEligibleBackend(t *testing.T) {
	first := newStub("uncertified", 0)
	second := newStub("certified", 1)
	second.profile.Certifications = "soc2"
	gate := compliance.NewGate(compliance.WithRequiredCertifications("soc2"))
	router, _ := newTestRouter(t, 0, gate, first, second)

	result, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.NoError(t, err)
	assert.Equal(t, "certified", result.BackendID)
	assert.Zero(t, first.translateCalls)
}

func TestTranslate_AllBackendsBlockedByCompliance(t *testing.T) {
	first := newStub("a", 0)
	second := newStub("b", 1)
	gate := compliance.NewGate(compliance.WithRequiredCertifications("hipaa"))
	router, _ := newTestRouter(t, 0, gate, first, second)

	_, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.Error(t, err)
	assert.True(t, app_errors.Is(err, app_errors.ErrNoAvailableBackend))
	assert.Contains(t, err.Error(), "compliance gate")
}

func TestTranslate_BroadcastTargets(t *testing.T) {
	backend := newStub("a", 0)
	router, _ := newTestRouter(t, 0, nil, backend)

	result, err := router.Translate(context.Background(), &Request{
		Text:                  "hello",
		SourceLang:            "en",
		TargetLang:            "de",
		TenantID:              "contoso",
		AdditionalTargetLangs: []string{"fr", "es", "de"},
	})

	require.NoError(t, err)
	assert.Equal(t, "de:hello", result.Text)
	assert.Equal(t, map[string]string{
		"fr": "fr:hello",
		"es": "es:hello",
	}, result.AdditionalTranslations, "primary target is excluded from broadcast")
}

func TestTranslate_ToneRewriteApplied(t *testing.T) {
	backend := newStub("a", 0)
	router, _ := newTestRouter(t, 0, nil, backend)

	result, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso", Tone: "formal",
	})

	require.NoError(t, err)
	assert.Equal(t, "formal!de:hello", result.Text)
}

func TestTranslate_DetectsMissingSourceLanguage(t *testing.T) {
	backend := newStub("a", 0)
	backend.detectResult = detector.Result{Language: "es", Confidence: 0.9}
	router, _ := newTestRouter(t, 0, nil, backend)

	result, err := router.Translate(context.Background(), &Request{
		Text: "hola mundo", TargetLang: "en", TenantID: "contoso",
	})

	require.NoError(t, err)
	assert.Equal(t, "es", result.SourceLang)
}

func TestTranslate_CancellationReleasesBudget(t *testing.T) {
	backend := newStub("a", 0)
	backend.translateErr = context.Canceled
	router, ledger := newTestRouter(t, 1000, nil, backend)

	_, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.Error(t, err)
	assert.True(t, app_errors.Is(err, app_errors.ErrRequestCancelled))

	spent, lErr := ledger.Spent("contoso")
	require.NoError(t, lErr)
	assert.Zero(t, spent, "cancellation must not leave a reservation committed")
}

func TestTranslate_EmptyPool(t *testing.T) {
	router, _ := newTestRouter(t, 0, nil)

	_, err := router.Translate(context.Background(), &Request{
		Text: "hello", SourceLang: "en", TargetLang: "de", TenantID: "contoso",
	})

	require.Error(t, err)
	assert.True(t, app_errors.Is(err, app_errors.ErrNoAvailableBackend))
}
