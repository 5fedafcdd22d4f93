package usecase

import "github.com/eslsoft/drillnet/internal/entity"

// baseVocabulary is the static candidate word base per (language, difficulty).
// Pool building falls back to English when a language has no list.
var baseVocabulary = map[entity.Language]map[entity.Difficulty][]string{
	entity.LanguageEnglish: {
		entity.DifficultyBeginner: {
			"house", "water", "bread", "apple", "street", "friend", "school",
			"table", "garden", "window", "family", "coffee", "morning", "dog",
		},
		entity.DifficultyIntermediate: {
			"journey", "weather", "kitchen", "library", "mountain", "neighbor",
			"holiday", "mistake", "message", "promise", "stranger", "shoulder",
			"apartment", "breakfast",
		},
		entity.DifficultyAdvanced: {
			"achievement", "circumstance", "consequence", "deliberately",
			"perseverance", "negotiation", "hypothesis", "ambiguous",
			"self-conscious", "nevertheless", "substantial", "controversy",
		},
	},
	entity.LanguageGerman: {
		entity.DifficultyBeginner: {
			"haus", "auto", "wasser", "brot", "apfel", "straße", "freund",
			"schule", "tisch", "garten", "fenster", "familie", "kaffee", "hund",
		},
		entity.DifficultyIntermediate: {
			"reise", "wetter", "küche", "bücherei", "berg", "nachbar",
			"urlaub", "fehler", "nachricht", "versprechen", "fremder",
			"schulter", "wohnung", "frühstück",
		},
		entity.DifficultyAdvanced: {
			"errungenschaft", "umstand", "folgerichtig", "absichtlich",
			"durchhaltevermögen", "verhandlung", "hypothese", "mehrdeutig",
			"selbstbewusst", "nichtsdestotrotz", "erheblich", "kontroverse",
		},
	},
	entity.LanguageSpanish: {
		entity.DifficultyBeginner: {
			"casa", "agua", "pan", "manzana", "calle", "amigo", "escuela",
			"mesa", "jardín", "ventana", "familia", "café", "mañana", "perro",
		},
		entity.DifficultyIntermediate: {
			"viaje", "tiempo", "cocina", "biblioteca", "montaña", "vecino",
			"vacaciones", "error", "mensaje", "promesa", "desconocido",
			"hombro", "apartamento", "desayuno",
		},
		entity.DifficultyAdvanced: {
			"logro", "circunstancia", "consecuencia", "deliberadamente",
			"perseverancia", "negociación", "hipótesis", "ambiguo",
			"consciente", "sustancial", "controversia", "imprescindible",
		},
	},
	entity.LanguageFrench: {
		entity.DifficultyBeginner: {
			"maison", "eau", "pain", "pomme", "rue", "ami", "école",
			"table", "jardin", "fenêtre", "famille", "café", "matin", "chien",
		},
		entity.DifficultyIntermediate: {
			"voyage", "météo", "cuisine", "bibliothèque", "montagne", "voisin",
			"vacances", "erreur", "message", "promesse", "étranger",
			"épaule", "appartement", "petit-déjeuner",
		},
		entity.DifficultyAdvanced: {
			"réussite", "circonstance", "conséquence", "délibérément",
			"persévérance", "négociation", "hypothèse", "ambigu",
			"néanmoins", "substantiel", "controverse", "indispensable",
		},
	},
}

// baseWords resolves the static vocabulary for a language and difficulty,
// falling back to English when the language has no list.
func baseWords(language entity.Language, difficulty entity.Difficulty) []string {
	tiers, ok := baseVocabulary[language]
	if !ok {
		tiers = baseVocabulary[entity.LanguageEnglish]
	}
	words, ok := tiers[difficulty]
	if !ok {
		words = tiers[entity.DifficultyBeginner]
	}
	return words
}
