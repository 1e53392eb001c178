package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"Referent/internal/ports"
	"Referent/pkg/textutil"
)

// sampleLimit bounds how much text is handed to the detector.
const sampleLimit = 2000

var supported = []lingua.Language{
	lingua.English,
	lingua.Russian,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Ukrainian,
	lingua.Chinese,
	lingua.Japanese,
}

// LinguaDetector implements ports.LanguageDetector with a fixed candidate set.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

var _ ports.LanguageDetector = (*LinguaDetector)(nil)

// NewLinguaDetector builds the detector; language models load lazily on first use.
func NewLinguaDetector() *LinguaDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(supported...).
		Build()
	return &LinguaDetector{detector: detector}
}

// Detect returns the English name of the language, or "" when unsure.
func (d *LinguaDetector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if d == nil || text == "" {
		return ""
	}
	lang, ok := d.detector.DetectLanguageOf(textutil.Truncate(text, sampleLimit))
	if !ok {
		return ""
	}
	return lang.String()
}
