package detector

import "regexp"

// languageDef describes one candidate language within a writing system. The
// signature pattern captures diacritic or digraph cues distinctive to the
// language; bias reflects prior frequency among texts of the script. Tables
// are ordered: earlier entries win ties after scoring.
type languageDef struct {
	code      string
	bias      float64
	signature *regexp.Regexp
	sigWeight float64
}

// Patterns are matched against the lower-cased input. RE2 word boundaries
// treat accented letters as non-word characters, so \b-anchored stop words
// must avoid fragments that appear as prefixes of accented words in sibling
// languages.
var (
	sigSpanish    = regexp.MustCompile(`[ñ¡¿]|[áíóú]`)
	sigFrench     = regexp.MustCompile(`[àâçèêëîïôûùœ]|\b(dans|pour|avec|vous|cette)\b`)
	sigGerman     = regexp.MustCompile(`[äöüß]|\b(der|die|und|nicht|ist)\b`)
	sigPortuguese = regexp.MustCompile(`[ãõ]|ção|\b(não|uma|você)\b`)
	sigItalian    = regexp.MustCompile(`è|\b(che|gli|della|zione|perché)\b`)
	sigDutch      = regexp.MustCompile(`\b(het|een|niet|voor|zijn)\b`)
	sigTurkish    = regexp.MustCompile(`[ğşı]|\b(bir|için|değil)\b`)
	sigPolish     = regexp.MustCompile(`[ąćęłńśźż]`)
	sigSwedish    = regexp.MustCompile(`[åä]|\b(och|att|det|inte)\b`)
	sigCzech      = regexp.MustCompile(`[ěščřžůď]`)
	sigRomanian   = regexp.MustCompile(`[ăâțș]`)
	sigVietnamese = regexp.MustCompile(`[ơưđạảấầẩậắằẳặẹẻẽếềểễệỉịọỏốồổỗộớờởợụủứừửữựỳỵỷỹ]`)
	sigIndonesian = regexp.MustCompile(`\b(yang|dan|untuk|tidak|dengan)\b`)
	sigEnglish    = regexp.MustCompile(`\b(the|and|with|that|from)\b`)

	sigRussian   = regexp.MustCompile(`[ыэъё]|\b(что|это|не|как)\b`)
	sigUkrainian = regexp.MustCompile(`[іїєґ]`)
	sigBulgarian = regexp.MustCompile(`ъ[лт]|\b(това|съм|като)\b`)
	sigSerbian   = regexp.MustCompile(`[јљњђћџ]`)
	sigKazakh    = regexp.MustCompile(`[әғқңөұүһі]`)

	sigArabicStd = regexp.MustCompile(`[ةظضذ]`)
	sigPersian   = regexp.MustCompile(`[پچژگ]`)
	sigUrdu      = regexp.MustCompile(`[ٹڈڑںے]`)

	sigHindi   = regexp.MustCompile(`है|का|की|में`)
	sigMarathi = regexp.MustCompile(`ळ|आहे`)
	sigNepali  = regexp.MustCompile(`छ\b|गर्न`)

	sigAmharic  = regexp.MustCompile(`ነው|እና`)
	sigTigrinya = regexp.MustCompile(`እዩ|ኣብ`)

	// kana presence is the Japanese cue for Han-script and kana-script text.
	sigKana = regexp.MustCompile(`[\p{Hiragana}\p{Katakana}]`)
)

// scriptLanguages maps every writing system to its fixed, ordered candidate
// table. Constructed once at init, never mutated at runtime.
var scriptLanguages = map[script][]languageDef{
	scriptLatin: {
		{code: "en", bias: 0.10, signature: sigEnglish, sigWeight: 0.08},
		{code: "es", bias: 0.06, signature: sigSpanish, sigWeight: 0.22},
		{code: "fr", bias: 0.06, signature: sigFrench, sigWeight: 0.22},
		{code: "de", bias: 0.06, signature: sigGerman, sigWeight: 0.22},
		{code: "pt", bias: 0.05, signature: sigPortuguese, sigWeight: 0.25},
		{code: "it", bias: 0.05, signature: sigItalian, sigWeight: 0.20},
		{code: "nl", bias: 0.04, signature: sigDutch, sigWeight: 0.18},
		{code: "tr", bias: 0.04, signature: sigTurkish, sigWeight: 0.22},
		{code: "pl", bias: 0.03, signature: sigPolish, sigWeight: 0.22},
		{code: "sv", bias: 0.03, signature: sigSwedish, sigWeight: 0.20},
		{code: "cs", bias: 0.03, signature: sigCzech, sigWeight: 0.22},
		{code: "ro", bias: 0.03, signature: sigRomanian, sigWeight: 0.22},
		{code: "vi", bias: 0.03, signature: sigVietnamese, sigWeight: 0.28},
		{code: "id", bias: 0.03, signature: sigIndonesian, sigWeight: 0.18},
	},
	scriptCyrillic: {
		{code: "ru", bias: 0.12, signature: sigRussian, sigWeight: 0.15},
		{code: "uk", bias: 0.05, signature: sigUkrainian, sigWeight: 0.22},
		{code: "bg", bias: 0.04, signature: sigBulgarian, sigWeight: 0.18},
		{code: "sr", bias: 0.03, signature: sigSerbian, sigWeight: 0.22},
		{code: "kk", bias: 0.02, signature: sigKazakh, sigWeight: 0.25},
	},
	scriptGreek: {
		{code: "el", bias: 0.10},
	},
	scriptHebrew: {
		{code: "he", bias: 0.10},
	},
	scriptArabic: {
		{code: "ar", bias: 0.10, signature: sigArabicStd, sigWeight: 0.12},
		{code: "fa", bias: 0.05, signature: sigPersian, sigWeight: 0.25},
		{code: "ur", bias: 0.04, signature: sigUrdu, sigWeight: 0.25},
	},
	scriptDevanagari: {
		{code: "hi", bias: 0.10, signature: sigHindi, sigWeight: 0.15},
		{code: "mr", bias: 0.04, signature: sigMarathi, sigWeight: 0.20},
		{code: "ne", bias: 0.03, signature: sigNepali, sigWeight: 0.15},
	},
	scriptBengali:   {{code: "bn", bias: 0.10}},
	scriptGurmukhi:  {{code: "pa", bias: 0.10}},
	scriptGujarati:  {{code: "gu", bias: 0.10}},
	scriptOriya:     {{code: "or", bias: 0.10}},
	scriptTamil:     {{code: "ta", bias: 0.10}},
	scriptTelugu:    {{code: "te", bias: 0.10}},
	scriptKannada:   {{code: "kn", bias: 0.10}},
	scriptMalayalam: {{code: "ml", bias: 0.10}},
	scriptSinhala:   {{code: "si", bias: 0.10}},
	scriptThai:      {{code: "th", bias: 0.10}},
	scriptLao:       {{code: "lo", bias: 0.10}},
	scriptMyanmar:   {{code: "my", bias: 0.10}},
	scriptKhmer:     {{code: "km", bias: 0.10}},
	scriptGeorgian:  {{code: "ka", bias: 0.10}},
	scriptArmenian:  {{code: "hy", bias: 0.10}},
	scriptEthiopic: {
		{code: "am", bias: 0.10, signature: sigAmharic, sigWeight: 0.15},
		{code: "ti", bias: 0.03, signature: sigTigrinya, sigWeight: 0.20},
	},
	scriptHan: {
		{code: "zh", bias: 0.10},
		{code: "ja", bias: 0.05, signature: sigKana, sigWeight: 0.22},
	},
	scriptHiragana: {
		{code: "ja", bias: 0.08, signature: sigKana, sigWeight: 0.15},
	},
	scriptKatakana: {
		{code: "ja", bias: 0.08, signature: sigKana, sigWeight: 0.15},
	},
	scriptHangul: {
		{code: "ko", bias: 0.08},
	},
}
