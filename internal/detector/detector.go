// Package detector implements heuristic language detection. Every letter of
// the input is bucketed by writing system; the dominant script selects a
// fixed candidate table which is then scored with per-language signature
// cues, frequency biases, and script-specific tie-break adjustments.
package detector

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Candidate is one scored language guess.
type Candidate struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// Result is the outcome of a detection call. Candidates are sorted by
// descending score; the first candidate's score equals Confidence.
type Result struct {
	Language   string      `json:"language"`
	Confidence float64     `json:"confidence"`
	Candidates []Candidate `json:"candidates"`
}

// Unknown is the language code reported for undetectable input.
const Unknown = "unknown"

// Scoring constants. The kana-absence penalties are empirically tuned against
// mixed CJK corpora; treat them as configuration, not derivation.
var (
	baseCoverageFull     = 0.60 // dominant script covers >= 85% of letters
	baseCoverageHigh     = 0.48 // >= 60%
	baseCoverageMid      = 0.35 // >= 40%
	baseCoverageLow      = 0.25 // anything else
	singleCandidateBonus = 0.12

	hanMissingKanaJaPenalty = 0.30
	hanMissingKanaZhPenalty = 0.10

	plainLatinMaxPenalty     = 0.25
	plainLatinEvidenceCredit = 0.03

	lowDiversityPenalty = 0.30

	// confidentCandidateLimit / ambiguousCandidateLimit size the candidate
	// list: ambiguous results carry more options for human disambiguation.
	confidentThreshold      = 0.75
	confidentCandidateLimit = 3
	ambiguousCandidateLimit = 6

	maxScore = 0.99
)

// English function-word and morphology evidence, used to scale the
// plain-Latin penalty: the more of these the text carries, the more it looks
// like real English rather than undistinguishable ASCII.
var (
	englishStopwords = regexp.MustCompile(`\b(the|and|of|to|in|is|that|it|with|for|this|was|are|on|as|you|be|have|not)\b`)
	englishSuffixes  = regexp.MustCompile(`(ing|tion|ness|ment|ed|ly)\b`)
)

// Detect classifies the language of the given text. Empty or letterless
// input yields a zero-confidence unknown result with no candidates.
func Detect(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Language: Unknown, Confidence: 0}
	}

	counts := make(map[script]int)
	totalLetters := 0
	uniqueLetters := make(map[rune]struct{})
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		totalLetters++
		uniqueLetters[unicode.ToLower(r)] = struct{}{}
		if s := classifyRune(r); s != scriptUnknown {
			counts[s]++
		}
	}
	if totalLetters == 0 {
		return Result{Language: Unknown, Confidence: 0}
	}

	dominant, dominantCount := dominantScript(counts)
	if dominant == scriptUnknown {
		return Result{Language: Unknown, Confidence: 0}
	}
	defs := scriptLanguages[dominant]

	lower := strings.ToLower(text)
	coverage := float64(dominantCount) / float64(totalLetters)
	base := coverageBase(coverage)
	if len(defs) == 1 {
		base += singleCandidateBonus
	}

	// Degenerate input (few distinct letters repeated many times) must not
	// yield high confidence, whatever the script.
	diversityPenalty := 0.0
	if totalLetters >= 8 && float64(len(uniqueLetters))/float64(totalLetters) < 0.15 {
		diversityPenalty = lowDiversityPenalty
	}

	candidates := make([]Candidate, 0, len(defs))
	for _, def := range defs {
		score := base + def.bias
		matched := false
		if def.signature != nil && def.signature.MatchString(lower) {
			score += def.sigWeight
			matched = true
		}
		score += scriptAdjustment(dominant, def.code, lower, defs, matched)
		score -= diversityPenalty
		candidates = append(candidates, Candidate{Language: def.code, Score: score})
	}

	// Clamp, round, and stable-sort so ties keep definition-table order.
	for i := range candidates {
		candidates[i].Score = round2(math.Min(math.Max(candidates[i].Score, 0), maxScore))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	confidence := candidates[0].Score
	limit := ambiguousCandidateLimit
	if confidence >= confidentThreshold {
		limit = confidentCandidateLimit
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return Result{
		Language:   candidates[0].Language,
		Confidence: confidence,
		Candidates: candidates,
	}
}

// dominantScript returns the bucket with the most letters. Ties go to the
// bucket that appears first in the classification order.
func dominantScript(counts map[script]int) (script, int) {
	best := scriptUnknown
	bestCount := 0
	for _, sr := range scriptRanges {
		if c := counts[sr.script]; c > bestCount {
			best = sr.script
			bestCount = c
		}
	}
	return best, bestCount
}

func coverageBase(coverage float64) float64 {
	switch {
	case coverage >= 0.85:
		return baseCoverageFull
	case coverage >= 0.60:
		return baseCoverageHigh
	case coverage >= 0.40:
		return baseCoverageMid
	default:
		return baseCoverageLow
	}
}

// scriptAdjustment applies the script-specific tie-break rules.
//
// Han: without kana, bare Han glyphs are ambiguous between Japanese and
// Chinese, so both candidates are penalized, Japanese harder. Shared CJK
// punctuation carries no signal and is ignored by the letter classifier.
//
// Latin: text with no diacritic signature anywhere is penalized in
// proportion to how little English function-word/morphology evidence it
// shows. Strong evidence shrinks the penalty to zero.
func scriptAdjustment(s script, code string, lower string, defs []languageDef, selfMatched bool) float64 {
	switch s {
	case scriptHan:
		if !sigKana.MatchString(lower) {
			switch code {
			case "ja":
				return -hanMissingKanaJaPenalty
			case "zh":
				return -hanMissingKanaZhPenalty
			}
		}
	case scriptLatin:
		if selfMatched && code != "en" {
			return 0
		}
		if anyDiacriticSignature(lower, defs) {
			return 0
		}
		evidence := len(englishStopwords.FindAllString(lower, -1)) +
			len(englishSuffixes.FindAllString(lower, -1))
		penalty := plainLatinMaxPenalty - plainLatinEvidenceCredit*float64(evidence)
		if penalty < 0 {
			penalty = 0
		}
		return -penalty
	}
	return 0
}

// anyDiacriticSignature reports whether any non-English candidate signature
// matches, meaning the text is not "plain" Latin.
func anyDiacriticSignature(lower string, defs []languageDef) bool {
	for _, def := range defs {
		if def.code == "en" || def.signature == nil {
			continue
		}
		if def.signature.MatchString(lower) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
