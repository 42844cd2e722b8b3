// internal/recommend/genre.go
package recommend

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// genreScanner finds the first position in a request where a genre starts.
// At each byte offset, left to right, it tries in order:
//
//  1. a configured phrase ("science fiction");
//  2. a lowercase word right after an article ("a horror movie"), unless the
//     word is one of the nouns;
//  3. a lowercase word right before a trigger ("drama from"), unless the text
//     up to the end of that word ends in one of the nouns.
//
// Offsets starting with a deny word are skipped entirely.
type genreScanner struct {
	phrases   []string
	articles  []string
	triggers  []string
	denyWords []string
	nouns     []string
}

func newGenreScanner(cfg ExtractorConfig) genreScanner {
	s := genreScanner{
		phrases:   cfg.Phrases,
		denyWords: cfg.DenyWords,
		nouns:     cfg.Nouns,
	}
	for _, a := range cfg.Articles {
		s.articles = append(s.articles, a+" ")
	}
	for _, t := range cfg.Triggers {
		s.triggers = append(s.triggers, " "+t)
	}
	return s
}

func (s genreScanner) scan(text string) string {
	for i := 0; i < len(text); i++ {
		rest := text[i:]
		if hasAnyPrefix(rest, s.denyWords) {
			continue
		}

		for _, p := range s.phrases {
			if strings.HasPrefix(rest, p) {
				return p
			}
		}

		end := i + wordRunLen(rest)
		if end == i {
			continue
		}
		word := text[i:end]

		if s.followsArticle(text[:i]) && !hasAnyPrefix(rest, s.nouns) {
			return word
		}

		if hasAnyPrefix(text[end:], s.triggers) && !hasAnySuffix(text[:end], s.nouns) {
			return word
		}
	}
	return ""
}

// followsArticle reports whether before ends with an article that is itself
// at a word boundary.
func (s genreScanner) followsArticle(before string) bool {
	for _, a := range s.articles {
		if !strings.HasSuffix(before, a) {
			continue
		}
		lead := before[:len(before)-len(a)]
		if lead == "" {
			return true
		}
		r, _ := utf8.DecodeLastRuneInString(lead)
		if !isWordRune(r) {
			return true
		}
	}
	return false
}

// wordRunLen is the length of the leading [a-z-]+ run of s.
func wordRunLen(s string) int {
	n := 0
	for n < len(s) && (s[n] >= 'a' && s[n] <= 'z' || s[n] == '-') {
		n++
	}
	return n
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, p := range suffixes {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}
