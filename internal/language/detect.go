// Package language detects the script of a message.
package language

import (
	"github.com/capitalize-ai/trip-concierge/internal/model"
)

// IsArabic reports whether r belongs to an Arabic Unicode block.
func IsArabic(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF, // Arabic
		r >= 0x0750 && r <= 0x077F, // Arabic Supplement
		r >= 0x08A0 && r <= 0x08FF, // Arabic Extended-A
		r >= 0xFB50 && r <= 0xFDFF, // Presentation Forms-A
		r >= 0xFE70 && r <= 0xFEFF: // Presentation Forms-B
		return true
	}
	return false
}

// Detect returns Arabic when the text contains any Arabic character and
// English otherwise.
func Detect(text string) model.Language {
	for _, r := range text {
		if IsArabic(r) {
			return model.LanguageArabic
		}
	}
	return model.LanguageEnglish
}

// Direction returns "rtl" for Arabic text and "ltr" otherwise.
func Direction(text string) string {
	return Detect(text).Direction()
}

// Resolve picks the turn language: the supplied value, then the session's
// language, then the detected script.
func Resolve(supplied string, inherited model.Language, text string) (model.Language, error) {
	if supplied != "" {
		return model.ParseLanguage(supplied)
	}
	if inherited != "" {
		return inherited, nil
	}
	return Detect(text), nil
}
