package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/entity"
)

const fallbackPoolSize = 10

// lastResortSentence is the final degradation tier when even the generic
// templates cannot be applied.
const lastResortSentence = "Practice makes progress."

// fallbackTemplates are deterministic, offline sentence templates keyed by
// language and difficulty; %s is replaced with the chosen word.
var fallbackTemplates = map[entity.Language]map[entity.Difficulty][]string{
	entity.LanguageEnglish: {
		entity.DifficultyBeginner: {
			"The %s is here.",
			"I see the %s.",
			"Where is the %s?",
		},
		entity.DifficultyIntermediate: {
			"Yesterday I found the %s near the station.",
			"Could you tell me more about the %s?",
			"The %s was not what we expected.",
		},
		entity.DifficultyAdvanced: {
			"Despite the circumstances, the %s proved remarkably useful.",
			"Few people appreciate how much the %s shapes daily life.",
			"The committee debated the %s at considerable length.",
		},
	},
	entity.LanguageGerman: {
		entity.DifficultyBeginner: {
			"Das %s ist hier.",
			"Ich sehe das %s.",
			"Wo ist das %s?",
		},
		entity.DifficultyIntermediate: {
			"Gestern habe ich das %s am Bahnhof gefunden.",
			"Kannst du mir mehr über das %s erzählen?",
			"Das %s war nicht das, was wir erwartet hatten.",
		},
		entity.DifficultyAdvanced: {
			"Trotz der Umstände erwies sich das %s als bemerkenswert nützlich.",
			"Nur wenige wissen, wie sehr das %s den Alltag prägt.",
			"Der Ausschuss diskutierte lange über das %s.",
		},
	},
	entity.LanguageSpanish: {
		entity.DifficultyBeginner: {
			"La %s está aquí.",
			"Veo la %s.",
			"¿Dónde está la %s?",
		},
		entity.DifficultyIntermediate: {
			"Ayer encontré la %s cerca de la estación.",
			"¿Puedes contarme más sobre la %s?",
			"La %s no era lo que esperábamos.",
		},
		entity.DifficultyAdvanced: {
			"A pesar de las circunstancias, la %s resultó muy útil.",
			"Poca gente aprecia cuánto influye la %s en la vida diaria.",
			"El comité debatió la %s durante mucho tiempo.",
		},
	},
	entity.LanguageFrench: {
		entity.DifficultyBeginner: {
			"La %s est ici.",
			"Je vois la %s.",
			"Où est la %s?",
		},
		entity.DifficultyIntermediate: {
			"Hier, j'ai trouvé la %s près de la gare.",
			"Peux-tu m'en dire plus sur la %s?",
			"La %s n'était pas ce que nous attendions.",
		},
		entity.DifficultyAdvanced: {
			"Malgré les circonstances, la %s s'est révélée très utile.",
			"Peu de gens mesurent à quel point la %s façonne le quotidien.",
			"Le comité a longuement débattu de la %s.",
		},
	},
}

// FallbackGenerator builds a deterministic offline exercise so the
// orchestrator's contract is unconditionally satisfiable.
type FallbackGenerator interface {
	Build(ctx context.Context, params entity.GenerationParams) entity.Exercise
}

type fallbackGenerator struct {
	pool   WordPoolBuilder
	logger *logrus.Logger
}

// NewFallbackGenerator wires the fallback on top of the pool builder.
func NewFallbackGenerator(pool WordPoolBuilder, logger *logrus.Logger) FallbackGenerator {
	return &fallbackGenerator{pool: pool, logger: logger}
}

func (f *fallbackGenerator) Build(ctx context.Context, params entity.GenerationParams) entity.Exercise {
	params.Normalize()

	word := f.topWord(ctx, params)
	sentence, language := fallbackSentence(word, params.Language, params.Difficulty)

	exercise := entity.Exercise{
		ID:              uuid.NewString(),
		Sentence:        sentence,
		TargetWord:      word,
		ClozeSentence:   clozeSentence(sentence, word),
		Translation:     fmt.Sprintf("Practice sentence for %q", word),
		Context:         "offline practice",
		DifficultyScore: params.Difficulty.TargetScore(),
		Hints:           []string{fmt.Sprintf("The word has %d letters.", len([]rune(word)))},
	}
	f.logger.WithFields(logrus.Fields{
		"word":     word,
		"language": language,
	}).Debug("fallback exercise built")
	return exercise
}

func (f *fallbackGenerator) topWord(ctx context.Context, params entity.GenerationParams) string {
	pool := f.pool.IntelligentPool(ctx, params.UserID, params.Language, params.Difficulty, false, fallbackPoolSize)
	if len(pool) > 0 {
		return pool[0].Word
	}
	base := baseWords(params.Language, params.Difficulty)
	if len(base) > 0 {
		return base[0]
	}
	return "practice"
}

// fallbackSentence resolves a template for (language, difficulty), degrading
// to the English generic set and finally to a fixed literal sentence. The
// template index is derived from the word so the result is deterministic.
func fallbackSentence(word string, language entity.Language, difficulty entity.Difficulty) (string, entity.Language) {
	tiers, ok := fallbackTemplates[language]
	if !ok {
		tiers = fallbackTemplates[entity.LanguageEnglish]
		language = entity.LanguageEnglish
	}
	templates, ok := tiers[difficulty]
	if !ok || len(templates) == 0 {
		templates = fallbackTemplates[entity.LanguageEnglish][entity.DifficultyBeginner]
		language = entity.LanguageEnglish
	}
	if len(templates) == 0 || word == "" {
		return lastResortSentence, entity.LanguageEnglish
	}
	template := templates[len([]rune(word))%len(templates)]
	return fmt.Sprintf(template, word), language
}

func clozeSentence(sentence, word string) string {
	if word == "" {
		return sentence
	}
	cloze := strings.Replace(sentence, word, "____", 1)
	if cloze == sentence {
		// Templates may capitalize the word at sentence start.
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		cloze = strings.Replace(sentence, string(runes), "____", 1)
	}
	return cloze
}
