package sentencepattern

import "strings"

// connectorSet holds the clause-connector keywords for one language.
type connectorSet struct {
	subordinating []string
	coordinating  []string
	commonVerbs   []string
	verbSuffixes  []string
}

var connectorSets = map[string]connectorSet{
	"en": {
		subordinating: []string{"because", "although", "while", "since", "unless", "whereas", "if", "when", "that", "which"},
		coordinating:  []string{"and", "but", "or", "so", "yet"},
		commonVerbs:   []string{"is", "are", "was", "were", "be", "been", "have", "has", "had", "do", "does", "did", "will", "would", "can", "could", "go", "goes", "went", "make", "makes", "made"},
		verbSuffixes:  []string{"ing", "ed"},
	},
	"de": {
		subordinating: []string{"weil", "obwohl", "während", "seit", "wenn", "dass", "damit", "falls", "bevor", "nachdem"},
		coordinating:  []string{"und", "aber", "oder", "denn", "sondern"},
		commonVerbs:   []string{"ist", "sind", "war", "waren", "sein", "hat", "haben", "hatte", "wird", "werden", "kann", "muss", "geht", "macht", "gibt"},
		verbSuffixes:  []string{"en", "st", "te"},
	},
	"es": {
		subordinating: []string{"porque", "aunque", "mientras", "desde", "si", "cuando", "que", "para que"},
		coordinating:  []string{"y", "pero", "o", "sino", "pues"},
		commonVerbs:   []string{"es", "son", "era", "eran", "ser", "estar", "está", "están", "hay", "tiene", "tienen", "puede", "va", "hace"},
		verbSuffixes:  []string{"ar", "er", "ir", "ando", "iendo", "ado", "ido"},
	},
	"fr": {
		subordinating: []string{"parce que", "bien que", "pendant que", "depuis que", "si", "quand", "que", "lorsque"},
		coordinating:  []string{"et", "mais", "ou", "donc", "car"},
		commonVerbs:   []string{"est", "sont", "était", "étaient", "être", "a", "ont", "avait", "va", "vont", "peut", "fait", "faut"},
		verbSuffixes:  []string{"er", "ez", "ons", "ant", "é"},
	},
	"it": {
		subordinating: []string{"perché", "sebbene", "mentre", "da quando", "se", "quando", "che", "affinché"},
		coordinating:  []string{"e", "ma", "o", "però", "quindi"},
		commonVerbs:   []string{"è", "sono", "era", "erano", "essere", "ha", "hanno", "aveva", "va", "vanno", "può", "fa"},
		verbSuffixes:  []string{"are", "ere", "ire", "ando", "endo", "ato", "ito"},
	},
}

// connectorsFor resolves the keyword set for a language key, case-insensitively.
// Unrecognized languages fall back to the English set.
func connectorsFor(language string) connectorSet {
	key := strings.ToLower(strings.TrimSpace(language))
	if set, ok := connectorSets[key]; ok {
		return set
	}
	return connectorSets["en"]
}
