// Package glossary resolves organizational terminology overrides. Entries
// are scoped to a tenant, channel, or user; when multiple scopes supply
// different targets for the same source term the conflict must be settled by
// an explicit caller decision before substitutions are committed.
package glossary

import (
	"sort"
	"strings"
	"unicode"

	"lingo-load/internal/models"
)

// ResolutionKind describes how a matched term was (or was not) resolved.
type ResolutionKind string

const (
	ResolutionUnspecified    ResolutionKind = "Unspecified"
	ResolutionUsePreferred   ResolutionKind = "UsePreferred"
	ResolutionUseAlternative ResolutionKind = "UseAlternative"
	ResolutionKeepOriginal   ResolutionKind = "KeepOriginal"
)

// Scope priority ranks. Lower is higher priority; anything outside the three
// known scopes is excluded from resolution entirely.
const (
	PriorityUser     = 0
	PriorityChannel  = 1
	PriorityTenant   = 2
	priorityExcluded = 3
)

// Decision is a caller-supplied resolution for one source term.
type Decision struct {
	Kind   ResolutionKind `json:"kind"`
	Target string         `json:"target,omitempty"`
	Scope  string         `json:"scope,omitempty"`
}

// CandidateDetail is one competing target for a matched source term.
type CandidateDetail struct {
	Target   string `json:"target"`
	Scope    string `json:"scope"`
	Priority int    `json:"priority"`
}

// MatchDetail reports the analysis of one distinct source term.
type MatchDetail struct {
	SourceTerm   string            `json:"source_term"`
	ChosenTarget string            `json:"chosen_target,omitempty"`
	Replaced     bool              `json:"replaced"`
	Conflict     bool              `json:"conflict"`
	Resolution   ResolutionKind    `json:"resolution"`
	Occurrences  int               `json:"occurrences"`
	Candidates   []CandidateDetail `json:"candidates"`
}

// Result is the outcome of a Preview or Apply call. Preview and Apply
// produce identical match analysis for the same input; they differ only in
// whether Text carries the substitutions.
type Result struct {
	Text               string        `json:"text"`
	Matches            []MatchDetail `json:"matches"`
	RequiresResolution bool          `json:"requires_resolution"`
}

// Resolver holds the read-only glossary snapshot loaded at startup.
type Resolver struct {
	entries []models.GlossaryTerm
}

// NewResolver creates a Resolver over a fixed entry set.
func NewResolver(entries []models.GlossaryTerm) *Resolver {
	snapshot := make([]models.GlossaryTerm, len(entries))
	copy(snapshot, entries)
	return &Resolver{entries: snapshot}
}

// Len returns the number of loaded entries.
func (r *Resolver) Len() int {
	return len(r.entries)
}

// Preview analyzes the text without committing substitutions. The caller's
// decisions map is never mutated.
func (r *Resolver) Preview(text, tenantID, channelID, userID string, decisions map[string]Decision) Result {
	return r.resolve(text, tenantID, channelID, userID, decisions, false)
}

// Apply runs the same analysis as Preview and commits every resolved
// substitution into the returned text.
func (r *Resolver) Apply(text, tenantID, channelID, userID string, decisions map[string]Decision) Result {
	return r.resolve(text, tenantID, channelID, userID, decisions, true)
}

func (r *Resolver) resolve(text, tenantID, channelID, userID string, decisions map[string]Decision, commit bool) Result {
	result := Result{Text: text}
	if text == "" || len(r.entries) == 0 {
		return result
	}

	// Case-insensitive decision lookup without touching the caller's map.
	decisionByTerm := make(map[string]Decision, len(decisions))
	for term, d := range decisions {
		decisionByTerm[strings.ToLower(term)] = d
	}

	// Group eligible entries by distinct source term.
	groups := make(map[string][]scopedEntry)
	order := make([]string, 0, 8)
	for _, entry := range r.entries {
		priority := scopePriority(entry.Scope, tenantID, channelID, userID)
		if priority == priorityExcluded {
			continue
		}
		key := strings.ToLower(entry.SourceTerm)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], scopedEntry{entry: entry, priority: priority})
	}
	sort.Strings(order)

	working := text
	for _, key := range order {
		group := groups[key]
		occurrences := len(findCaseInsensitive(text, key))
		if occurrences == 0 {
			continue
		}

		candidates := dedupeCandidates(group)
		detail := MatchDetail{
			SourceTerm:  group[0].entry.SourceTerm,
			Conflict:    len(candidates) >= 2,
			Occurrences: occurrences,
			Candidates:  candidates,
			Resolution:  ResolutionUnspecified,
		}

		decision, hasDecision := decisionByTerm[key]
		if hasDecision {
			switch decision.Kind {
			case ResolutionKeepOriginal, ResolutionUseAlternative, ResolutionUsePreferred:
			default:
				// A zero-value or unrecognized kind carries no instruction;
				// treat it as no decision so conflict-free terms still
				// auto-resolve.
				hasDecision = false
			}
		}
		switch {
		case hasDecision && decision.Kind == ResolutionKeepOriginal:
			detail.Resolution = ResolutionKeepOriginal
		case hasDecision && decision.Kind == ResolutionUseAlternative:
			detail.Resolution = ResolutionUseAlternative
			detail.ChosenTarget = pickAlternative(candidates, decision.Target)
		case hasDecision && decision.Kind == ResolutionUsePreferred:
			detail.Resolution = ResolutionUsePreferred
			detail.ChosenTarget = candidates[0].Target
		case !hasDecision && !detail.Conflict:
			// Single distinct target: auto-resolve.
			detail.Resolution = ResolutionUsePreferred
			detail.ChosenTarget = candidates[0].Target
		default:
			// Unresolved conflict: leave Unspecified and force a halt.
			result.RequiresResolution = true
		}

		if detail.ChosenTarget != "" {
			detail.Replaced = true
			if commit {
				working = replaceCaseInsensitive(working, key, detail.ChosenTarget)
			}
		}

		result.Matches = append(result.Matches, detail)
	}

	if commit {
		result.Text = working
	}
	return result
}

type scopedEntry struct {
	entry    models.GlossaryTerm
	priority int
}

// scopePriority maps an entry scope onto its rank for the given identifiers.
// Scopes only match exactly; an empty identifier never matches its tier.
func scopePriority(scope, tenantID, channelID, userID string) int {
	switch {
	case userID != "" && scope == "user:"+userID:
		return PriorityUser
	case channelID != "" && scope == "channel:"+channelID:
		return PriorityChannel
	case tenantID != "" && scope == "tenant:"+tenantID:
		return PriorityTenant
	default:
		return priorityExcluded
	}
}

// dedupeCandidates keeps the highest-priority entry per distinct target
// (case-insensitive) and orders the survivors by priority, then target text.
func dedupeCandidates(group []scopedEntry) []CandidateDetail {
	best := make(map[string]scopedEntry, len(group))
	for _, se := range group {
		key := strings.ToLower(se.entry.TargetTerm)
		if current, exists := best[key]; !exists || se.priority < current.priority {
			best[key] = se
		}
	}

	candidates := make([]CandidateDetail, 0, len(best))
	for _, se := range best {
		candidates = append(candidates, CandidateDetail{
			Target:   se.entry.TargetTerm,
			Scope:    se.entry.Scope,
			Priority: se.priority,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].Target < candidates[j].Target
	})
	return candidates
}

// pickAlternative selects the candidate named by an explicit decision target,
// falling back to the second-ranked candidate when no exact match exists.
func pickAlternative(candidates []CandidateDetail, target string) string {
	for _, c := range candidates {
		if strings.EqualFold(c.Target, target) {
			return c.Target
		}
	}
	if len(candidates) >= 2 {
		return candidates[1].Target
	}
	return candidates[0].Target
}

// findCaseInsensitive returns the non-overlapping byte spans in text where a
// case-insensitive occurrence of lowerOld (already lower-cased) begins and
// ends. Matching folds the original text rune by rune: case folding can
// change a rune's encoded length (Turkish U+0130 lowers from 2 bytes to 1),
// so offsets found in a lowered copy must never be used to slice the
// original.
func findCaseInsensitive(text, lowerOld string) [][2]int {
	if lowerOld == "" {
		return nil
	}
	needle := []rune(lowerOld)

	folded := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		offsets = append(offsets, i)
		folded = append(folded, unicode.ToLower(r))
	}
	offsets = append(offsets, len(text))

	var spans [][2]int
	for i := 0; i+len(needle) <= len(folded); {
		matched := true
		for j, nr := range needle {
			if folded[i+j] != nr {
				matched = false
				break
			}
		}
		if matched {
			spans = append(spans, [2]int{offsets[i], offsets[i+len(needle)]})
			i += len(needle)
		} else {
			i++
		}
	}
	return spans
}

// replaceCaseInsensitive substitutes every case-insensitive literal
// occurrence of lowerOld (already lower-cased) in text with replacement.
func replaceCaseInsensitive(text, lowerOld, replacement string) string {
	spans := findCaseInsensitive(text, lowerOld)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(spans)*len(replacement))
	last := 0
	for _, span := range spans {
		b.WriteString(text[last:span[0]])
		b.WriteString(replacement)
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
