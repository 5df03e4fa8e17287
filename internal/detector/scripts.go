package detector

import "unicode"

// script identifies one writing-system bucket used by the classifier.
type script int

const (
	scriptUnknown script = iota
	scriptLatin
	scriptCyrillic
	scriptGreek
	scriptHebrew
	scriptArabic
	scriptDevanagari
	scriptBengali
	scriptGurmukhi
	scriptGujarati
	scriptOriya
	scriptTamil
	scriptTelugu
	scriptKannada
	scriptMalayalam
	scriptSinhala
	scriptThai
	scriptLao
	scriptMyanmar
	scriptKhmer
	scriptGeorgian
	scriptArmenian
	scriptEthiopic
	scriptHan
	scriptHiragana
	scriptKatakana
	scriptHangul
)

// scriptRanges maps each bucket to its Unicode range table. Order matters:
// classification takes the first matching table, so the specific CJK tables
// come before Han.
var scriptRanges = []struct {
	script script
	table  *unicode.RangeTable
}{
	{scriptHiragana, unicode.Hiragana},
	{scriptKatakana, unicode.Katakana},
	{scriptHangul, unicode.Hangul},
	{scriptHan, unicode.Han},
	{scriptLatin, unicode.Latin},
	{scriptCyrillic, unicode.Cyrillic},
	{scriptGreek, unicode.Greek},
	{scriptHebrew, unicode.Hebrew},
	{scriptArabic, unicode.Arabic},
	{scriptDevanagari, unicode.Devanagari},
	{scriptBengali, unicode.Bengali},
	{scriptGurmukhi, unicode.Gurmukhi},
	{scriptGujarati, unicode.Gujarati},
	{scriptOriya, unicode.Oriya},
	{scriptTamil, unicode.Tamil},
	{scriptTelugu, unicode.Telugu},
	{scriptKannada, unicode.Kannada},
	{scriptMalayalam, unicode.Malayalam},
	{scriptSinhala, unicode.Sinhala},
	{scriptThai, unicode.Thai},
	{scriptLao, unicode.Lao},
	{scriptMyanmar, unicode.Myanmar},
	{scriptKhmer, unicode.Khmer},
	{scriptGeorgian, unicode.Georgian},
	{scriptArmenian, unicode.Armenian},
	{scriptEthiopic, unicode.Ethiopic},
}

// classifyRune returns the writing-system bucket of a letter rune, or
// scriptUnknown when the rune belongs to none of the tracked scripts.
func classifyRune(r rune) script {
	for _, sr := range scriptRanges {
		if unicode.Is(sr.table, r) {
			return sr.script
		}
	}
	return scriptUnknown
}
