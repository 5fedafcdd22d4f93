package entity

import "strings"

// Language represents supported language codes using ISO-style abbreviations.
type Language string

const (
	LanguageUnspecified Language = ""
	LanguageEnglish     Language = "en"
	LanguageGerman      Language = "de"
	LanguageSpanish     Language = "es"
	LanguageFrench      Language = "fr"
	LanguageItalian     Language = "it"
	LanguagePortuguese  Language = "pt"
)

// Code returns the lowercase language code (without defaulting).
func (l Language) Code() string {
	return strings.TrimSpace(string(l))
}

// CodeOrDefault returns the language code, falling back to English when unspecified.
func (l Language) CodeOrDefault() string {
	if l.Code() == "" {
		return string(LanguageEnglish)
	}
	return l.Code()
}

// NormalizeLanguage ensures the language falls back to a supported value (defaults to English).
func NormalizeLanguage(lang Language) Language {
	switch lang {
	case LanguageEnglish, LanguageGerman, LanguageSpanish, LanguageFrench, LanguageItalian, LanguagePortuguese:
		return lang
	default:
		return LanguageEnglish
	}
}

// ParseLanguage converts an arbitrary string into a supported Language value.
func ParseLanguage(code string) Language {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en":
		return LanguageEnglish
	case "de":
		return LanguageGerman
	case "es":
		return LanguageSpanish
	case "fr":
		return LanguageFrench
	case "it":
		return LanguageItalian
	case "pt":
		return LanguagePortuguese
	default:
		return LanguageUnspecified
	}
}

// Difficulty is the learner-facing difficulty tier of an exercise.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ParseDifficulty converts an arbitrary string into a Difficulty, defaulting to beginner.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intermediate":
		return DifficultyIntermediate
	case "advanced":
		return DifficultyAdvanced
	default:
		return DifficultyBeginner
	}
}

// TargetScore is the difficulty score a candidate word should be close to for the tier.
func (d Difficulty) TargetScore() float64 {
	switch d {
	case DifficultyIntermediate:
		return 50
	case DifficultyAdvanced:
		return 70
	default:
		return 30
	}
}

// BaseScore is the starting difficulty score assigned to words of the tier.
func (d Difficulty) BaseScore() float64 {
	switch d {
	case DifficultyIntermediate:
		return 50
	case DifficultyAdvanced:
		return 80
	default:
		return 20
	}
}

// CooldownBonus scales cooldown durations per tier.
func (d Difficulty) CooldownBonus() float64 {
	switch d {
	case DifficultyBeginner:
		return 0.8
	case DifficultyAdvanced:
		return 1.2
	default:
		return 1.0
	}
}

// NormalizeWordToken lowercases and trims a word for use as a map/storage key.
func NormalizeWordToken(word string) string {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(trimmed)
}
