package translator

import (
	"context"
	"errors"
	"strings"

	"lingo-load/internal/budget"
	"lingo-load/internal/compliance"
	"lingo-load/internal/detector"
	app_errors "lingo-load/internal/errors"
	"lingo-load/internal/glossary"
	"lingo-load/internal/utils"

	"github.com/sirupsen/logrus"
)

// Request carries everything the router needs for one translation.
type Request struct {
	RequestID             string
	Text                  string
	SourceLang            string
	TargetLang            string
	TenantID              string
	UserID                string
	Tone                  string
	PromptHint            string
	AdditionalTargetLangs []string
}

// Result is the finished translation composed by the router. GlossaryMatches
// is attached by the pipeline after routing completes.
type Result struct {
	Text                   string                 `json:"text"`
	SourceLang             string                 `json:"source_lang"`
	TargetLang             string                 `json:"target_lang"`
	BackendID              string                 `json:"backend_id"`
	Confidence             float64                `json:"confidence"`
	LatencyMs              int64                  `json:"latency_ms"`
	CostMicros             int64                  `json:"cost_micros"`
	AdditionalTranslations map[string]string      `json:"additional_translations,omitempty"`
	GlossaryMatches        []glossary.MatchDetail `json:"glossary_matches,omitempty"`
}

// Router walks the backend pool in its fixed configuration order. Each
// candidate backend passes the compliance gate, then budget admission, then
// invocation; a transient invocation failure moves on to the next backend,
// anything else aborts.
type Router struct {
	pool   []Backend
	gate   *compliance.Gate
	ledger *budget.Ledger
	audit  AuditSink
}

// NewRouter creates a Router. audit may be nil.
func NewRouter(pool []Backend, gate *compliance.Gate, ledger *budget.Ledger, audit AuditSink) *Router {
	return &Router{pool: pool, gate: gate, ledger: ledger, audit: audit}
}

// Translate produces a finished translation or a terminal error once the pool
// is exhausted. Budget refusal aborts immediately; it is not a per-backend
// retryable condition.
func (r *Router) Translate(ctx context.Context, req *Request) (*Result, error) {
	if len(r.pool) == 0 {
		return nil, app_errors.ErrNoAvailableBackend
	}

	sourceLang := req.SourceLang
	if sourceLang == "" {
		if det, err := r.pool[0].DetectLanguage(ctx, req.Text); err == nil && det.Language != detector.Unknown {
			sourceLang = det.Language
		}
	}

	textLen := int64(len([]rune(req.Text)))
	complianceSkips := 0
	var firstViolations []string

	for _, backend := range r.pool {
		profile := backend.Profile()
		log := logrus.WithFields(logrus.Fields{
			"request_id": req.RequestID,
			"backend":    profile.Identifier,
		})

		report := r.gate.Evaluate(req.Text, profile)
		if !report.Allowed {
			complianceSkips++
			if firstViolations == nil {
				firstViolations = report.Violations
			}
			log.WithField("violations", report.Violations).Debug("Backend skipped by compliance gate")
			continue
		}

		cost := textLen * profile.CostPerChar
		granted, err := r.ledger.TryReserve(req.TenantID, cost)
		if err != nil {
			return nil, app_errors.NewAPIError(app_errors.ErrInternalServer, err.Error())
		}
		if !granted {
			return nil, app_errors.ErrBudgetExceeded
		}

		result, err := r.invoke(ctx, backend, req, sourceLang)
		if err != nil {
			// Unwind the reservation: no cost accrued on this backend.
			if rlErr := r.ledger.Release(req.TenantID, cost); rlErr != nil {
				log.Errorf("Failed to release budget reservation: %v", rlErr)
			}

			if isCancellation(err) {
				return nil, app_errors.ErrRequestCancelled
			}
			if utils.IsRetryableError(err) {
				log.Warnf("Backend failed with transient error, trying next: %v", err)
				continue
			}
			return nil, app_errors.NewAPIError(app_errors.ErrBackendInvocation, err.Error())
		}

		result.CostMicros = cost
		if r.audit != nil {
			r.audit.Record(AuditEntry{
				RequestID:              req.RequestID,
				TenantID:               req.TenantID,
				UserID:                 req.UserID,
				BackendID:              result.BackendID,
				SourceLanguage:         result.SourceLang,
				TargetLanguage:         result.TargetLang,
				OriginalText:           req.Text,
				FinalText:              result.Text,
				CostMicros:             result.CostMicros,
				LatencyMs:              result.LatencyMs,
				AdditionalTranslations: result.AdditionalTranslations,
			})
		}
		return result, nil
	}

	// A pool rejected entirely by compliance surfaces as exhaustion, with the
	// violations preserved in the message.
	if complianceSkips == len(r.pool) {
		return nil, app_errors.NewAPIError(app_errors.ErrNoAvailableBackend,
			"No backend passed the compliance gate: "+strings.Join(firstViolations, "; "))
	}
	return nil, app_errors.ErrNoAvailableBackend
}

// invoke runs translate + tone rewrite on one backend, then repeats the pair
// for every broadcast target language.
func (r *Router) invoke(ctx context.Context, backend Backend, req *Request, sourceLang string) (*Result, error) {
	translated, err := backend.Translate(ctx, req.Text, sourceLang, req.TargetLang, req.PromptHint)
	if err != nil {
		return nil, err
	}

	finalText, err := backend.RewriteTone(ctx, translated.Text, req.Tone)
	if err != nil {
		return nil, err
	}

	var additional map[string]string
	for _, lang := range req.AdditionalTargetLangs {
		if lang == "" || lang == req.TargetLang {
			continue
		}
		extra, err := backend.Translate(ctx, req.Text, sourceLang, lang, req.PromptHint)
		if err != nil {
			return nil, err
		}
		extraText, err := backend.RewriteTone(ctx, extra.Text, req.Tone)
		if err != nil {
			return nil, err
		}
		if additional == nil {
			additional = make(map[string]string, len(req.AdditionalTargetLangs))
		}
		additional[lang] = extraText
	}

	return &Result{
		Text:                   finalText,
		SourceLang:             sourceLang,
		TargetLang:             req.TargetLang,
		BackendID:              translated.BackendID,
		Confidence:             translated.Confidence,
		LatencyMs:              translated.LatencyMs,
		AdditionalTranslations: additional,
	}, nil
}

func isCancellation(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var categorized *utils.CategorizedError
	return errors.As(err, &categorized) && categorized.Type == utils.ErrorCategoryCancelled
}
