// Package langdetect provides the two language checks the sync pipeline
// needs: a cheap script-range test that decides whether a field needs
// translation at all, and a heavier lingua-based detector for the
// best-effort language tag stored on each mod.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// ContainsCJK reports whether text contains any CJK ideographs or kana.
// A field without them is assumed to already be in the target language and
// is never sent to the translation engine.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			return true
		}
	}
	return false
}

// DetectISO6391 returns a best-effort two-letter language code for text,
// or "" when the sample is too short to classify reliably.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	// Very short samples misclassify constantly; CJK is the one script we
	// can call from a couple of runes.
	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		if ContainsCJK(sample) {
			return "zh"
		}
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.Chinese,
				lingua.Japanese,
				lingua.Korean,
				lingua.English,
				lingua.Russian,
				lingua.German,
				lingua.French,
				lingua.Spanish,
			).
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
