// ABOUTME: Species name lookup over an embedded pokedex
// ABOUTME: Normalises chat spellings to the canonical species name

package pokedex

import (
	_ "embed"
	"strings"
	"sync"
	"unicode"
)

//go:embed names.txt
var namesFile string

type index struct {
	names []string
	byKey map[string]string
}

var load = sync.OnceValue(func() index {
	idx := index{byKey: make(map[string]string)}
	for _, line := range strings.Split(namesFile, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		idx.names = append(idx.names, name)
		idx.byKey[normalize(name)] = name
	}
	return idx
})

// normalize keeps letters and digits, lower-cased. Gender symbols become f and m
// so "Nidoran F" and "Nidoran♀" share a key.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '♀':
			b.WriteRune('f')
		case r == '♂':
			b.WriteRune('m')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// MatchPokemon returns the canonical species name for text.
func MatchPokemon(text string) (string, bool) {
	k := normalize(text)
	if k == "" {
		return "", false
	}
	name, ok := load().byKey[k]
	return name, ok
}

// Names returns every species in dex order.
func Names() []string {
	return append([]string(nil), load().names...)
}
