// Package pipeline sequences one translation request through validation,
// glossary resolution, language detection, caching, throttling, and routing.
// Glossary conflicts and low-confidence detection are not failures; they halt
// the pipeline with a payload the caller uses to resubmit.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"lingo-load/internal/detector"
	app_errors "lingo-load/internal/errors"
	"lingo-load/internal/glossary"
	"lingo-load/internal/store"
	"lingo-load/internal/throttle"
	"lingo-load/internal/translator"
	"lingo-load/internal/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// TranslationRequest is the caller-facing request. The pipeline never mutates
// the caller's value; every stage works on a normalized deep copy.
type TranslationRequest struct {
	RequestID             string                       `json:"request_id,omitempty"`
	Text                  string                       `json:"text"`
	SourceLang            string                       `json:"source_lang,omitempty"`
	TargetLang            string                       `json:"target_lang"`
	TenantID              string                       `json:"tenant_id"`
	UserID                string                       `json:"user_id,omitempty"`
	ChannelID             string                       `json:"channel_id,omitempty"`
	ThreadID              string                       `json:"thread_id,omitempty"`
	Tone                  string                       `json:"tone,omitempty"`
	UseGlossary           bool                         `json:"use_glossary,omitempty"`
	AdditionalTargetLangs []string                     `json:"additional_target_langs,omitempty"`
	GlossaryDecisions     map[string]glossary.Decision `json:"glossary_decisions,omitempty"`
	ContextHints          map[string]string            `json:"context_hints,omitempty"`
	// Detection carries a detection result from a prior DetectionRequired
	// halt so resubmission does not re-run the heuristic.
	Detection *detector.Result `json:"detection,omitempty"`
}

// Status tags the populated variant of a Result.
type Status string

const (
	StatusTranslation              Status = "translation"
	StatusDetectionRequired        Status = "detection_required"
	StatusGlossaryConflictRequired Status = "glossary_conflict_required"
)

// Result is a tagged union: exactly one payload is populated, selected by
// Status. Callers must branch on Status before reading payload fields.
type Result struct {
	Status          Status              `json:"status"`
	Translation     *translator.Result  `json:"translation,omitempty"`
	Detection       *detector.Result    `json:"detection,omitempty"`
	GlossaryPreview *glossary.Result    `json:"glossary_preview,omitempty"`
	RequestSnapshot *TranslationRequest `json:"request_snapshot,omitempty"`
}

// ContextProvider supplies optional conversational context prepended to the
// backend prompt. Failures are swallowed; context is best-effort.
type ContextProvider interface {
	GetContext(ctx context.Context, tenantID, channelID string, hints map[string]string) (string, error)
}

// Pipeline is the orchestrator. Safe for concurrent use.
type Pipeline struct {
	resolver *glossary.Resolver
	router   *translator.Router
	throttle *throttle.Throttle
	cache    store.Store
	enricher ContextProvider

	maxTextLength       int
	cacheTTL            time.Duration
	confidenceThreshold float64
}

// NewPipeline wires the orchestrator. enricher may be nil.
func NewPipeline(
	resolver *glossary.Resolver,
	router *translator.Router,
	th *throttle.Throttle,
	cache store.Store,
	enricher ContextProvider,
	cfg types.PipelineConfig,
) *Pipeline {
	return &Pipeline{
		resolver:            resolver,
		router:              router,
		throttle:            th,
		cache:               cache,
		enricher:            enricher,
		maxTextLength:       cfg.MaxTextLength,
		cacheTTL:            time.Duration(cfg.CacheTTLSeconds) * time.Second,
		confidenceThreshold: cfg.DetectionConfidenceThreshold,
	}
}

// Detect exposes standalone detection for detection-only callers.
func (p *Pipeline) Detect(text string) detector.Result {
	return detector.Detect(text)
}

// Execute runs one request to a terminal state: a finished translation, a
// halt payload requiring caller action, or a terminal error.
func (p *Pipeline) Execute(ctx context.Context, req *TranslationRequest) (*Result, error) {
	if err := p.validate(req); err != nil {
		return nil, err
	}

	work := req.clone()
	if work.RequestID == "" {
		work.RequestID = uuid.NewString()
	}

	log := logrus.WithFields(logrus.Fields{
		"request_id": work.RequestID,
		"tenant":     work.TenantID,
	})

	var matches []glossary.MatchDetail
	if work.UseGlossary {
		preview := p.resolver.Preview(work.Text, work.TenantID, work.ChannelID, work.UserID, work.GlossaryDecisions)
		if preview.RequiresResolution {
			// No side effects yet; the caller resubmits the snapshot with
			// decisions attached.
			log.Info("Glossary conflict requires caller resolution")
			snapshot := work.clone()
			return &Result{
				Status:          StatusGlossaryConflictRequired,
				GlossaryPreview: &preview,
				RequestSnapshot: snapshot,
			}, nil
		}

		applied := p.resolver.Apply(work.Text, work.TenantID, work.ChannelID, work.UserID, work.GlossaryDecisions)
		work.Text = applied.Text
		matches = applied.Matches
	}

	p.normalize(work)

	if work.SourceLang == "" {
		detection, fromCaller := p.detectSource(work)
		if !fromCaller && detection.Confidence < p.confidenceThreshold {
			log.WithFields(logrus.Fields{
				"language":   detection.Language,
				"confidence": detection.Confidence,
			}).Info("Detection confidence below threshold, caller disambiguation required")
			return &Result{Status: StatusDetectionRequired, Detection: &detection}, nil
		}
		work.SourceLang = detection.Language
	}

	promptHint := p.enrich(ctx, work, log)

	cacheKey := p.cacheKey(work)
	if cached, ok := p.cacheLookup(cacheKey); ok {
		log.Debug("Translation served from cache")
		cached.GlossaryMatches = matches
		return &Result{Status: StatusTranslation, Translation: cached}, nil
	}

	release, err := p.throttle.Acquire(ctx, work.TenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	routed, err := p.router.Translate(ctx, &translator.Request{
		RequestID:             work.RequestID,
		Text:                  work.Text,
		SourceLang:            work.SourceLang,
		TargetLang:            work.TargetLang,
		TenantID:              work.TenantID,
		UserID:                work.UserID,
		Tone:                  work.Tone,
		PromptHint:            promptHint,
		AdditionalTargetLangs: work.AdditionalTargetLangs,
	})
	if err != nil {
		return nil, err
	}

	if ctx.Err() == nil {
		p.cacheStore(cacheKey, routed)
	}

	routed.GlossaryMatches = matches
	return &Result{Status: StatusTranslation, Translation: routed}, nil
}

func (p *Pipeline) validate(req *TranslationRequest) error {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return app_errors.NewValidationError("text is required")
	}
	if req.TargetLang == "" {
		return app_errors.NewValidationError("target language is required")
	}
	if p.maxTextLength > 0 && len([]rune(req.Text)) > p.maxTextLength {
		return app_errors.NewAPIError(app_errors.ErrTextTooLong,
			fmt.Sprintf("text exceeds the maximum of %d characters", p.maxTextLength))
	}
	return nil
}

// normalize canonicalizes language codes and sorts broadcast targets so cache
// keys and retries are based on stable data.
func (p *Pipeline) normalize(req *TranslationRequest) {
	req.SourceLang = canonicalLanguage(req.SourceLang)
	req.TargetLang = canonicalLanguage(req.TargetLang)

	if len(req.AdditionalTargetLangs) > 0 {
		seen := make(map[string]bool, len(req.AdditionalTargetLangs))
		normalized := make([]string, 0, len(req.AdditionalTargetLangs))
		for _, lang := range req.AdditionalTargetLangs {
			code := canonicalLanguage(lang)
			if code == "" || code == req.TargetLang || seen[code] {
				continue
			}
			seen[code] = true
			normalized = append(normalized, code)
		}
		sort.Strings(normalized)
		req.AdditionalTargetLangs = normalized
	}
}

// detectSource returns the source detection and whether it was supplied by
// the caller. An attached detection is the disambiguation answer from a prior
// halt; re-screening it against the threshold would loop the halt forever, so
// it is trusted regardless of confidence.
func (p *Pipeline) detectSource(req *TranslationRequest) (detector.Result, bool) {
	if req.Detection != nil && req.Detection.Language != detector.Unknown {
		return *req.Detection, true
	}
	return detector.Detect(req.Text), false
}

// enrich asks the context provider for conversational context. Any failure is
// treated as "no context available".
func (p *Pipeline) enrich(ctx context.Context, req *TranslationRequest, log *logrus.Entry) string {
	if p.enricher == nil {
		return ""
	}
	contextText, err := p.enricher.GetContext(ctx, req.TenantID, req.ChannelID, req.ContextHints)
	if err != nil {
		log.Debugf("Context enrichment unavailable: %v", err)
		return ""
	}
	return contextText
}

func (p *Pipeline) cacheKey(req *TranslationRequest) string {
	sum := sha256.Sum256([]byte(req.Text))
	return strings.Join([]string{
		"translation",
		req.TenantID,
		req.SourceLang,
		req.TargetLang,
		req.Tone,
		fmt.Sprintf("g%t", req.UseGlossary),
		strings.Join(req.AdditionalTargetLangs, ","),
		hex.EncodeToString(sum[:]),
	}, "|")
}

// cacheLookup returns a deep copy of the cached result so callers can never
// mutate a shared entry.
func (p *Pipeline) cacheLookup(key string) (*translator.Result, bool) {
	data, err := p.cache.Get(key)
	if err != nil {
		return nil, false
	}
	var result translator.Result
	if err := json.Unmarshal(data, &result); err != nil {
		logrus.Warnf("Dropping undecodable cache entry: %v", err)
		_ = p.cache.Delete(key)
		return nil, false
	}
	return &result, true
}

func (p *Pipeline) cacheStore(key string, result *translator.Result) {
	if p.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := p.cache.Set(key, data, p.cacheTTL); err != nil {
		logrus.Warnf("Failed to store translation in cache: %v", err)
	}
}

// clone deep-copies the request so retries never observe partially-mutated
// state from a failed attempt.
func (r *TranslationRequest) clone() *TranslationRequest {
	dup := *r
	if r.AdditionalTargetLangs != nil {
		dup.AdditionalTargetLangs = append([]string(nil), r.AdditionalTargetLangs...)
	}
	if r.GlossaryDecisions != nil {
		dup.GlossaryDecisions = make(map[string]glossary.Decision, len(r.GlossaryDecisions))
		for k, v := range r.GlossaryDecisions {
			dup.GlossaryDecisions[k] = v
		}
	}
	if r.ContextHints != nil {
		dup.ContextHints = make(map[string]string, len(r.ContextHints))
		for k, v := range r.ContextHints {
			dup.ContextHints[k] = v
		}
	}
	if r.Detection != nil {
		det := *r.Detection
		det.Candidates = append([]detector.Candidate(nil), r.Detection.Candidates...)
		dup.Detection = &det
	}
	return &dup
}

// canonicalLanguage normalizes a language code to its canonical BCP-47 base
// form. Unparseable codes pass through lower-cased so the router can still
// hand them to a backend.
func canonicalLanguage(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(code))
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return strings.ToLower(strings.TrimSpace(code))
	}
	return base.String()
}
