package service

import "strings"

// searchStopwords son articulos, preposiciones y los verbos con que se formula una busqueda.
var searchStopwords = map[string]struct{}{
	"search":  {},
	"find":    {},
	"looking": {},
	"for":     {},
	"want":    {},
	"need":    {},
	"show":    {},
	"me":      {},
	"a":       {},
	"an":      {},
	"the":     {},
	"is":      {},
	"are":     {},
	"more":    {},
}

// Tokenize pasa el texto a minusculas, lo separa por espacios y descarta stopwords.
// Los duplicados se colapsan conservando el orden de primera aparicion.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := searchStopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}
