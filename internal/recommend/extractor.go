// internal/recommend/extractor.go
package recommend

import (
	"encoding/json"
	"regexp"
	"strings"

	"cinema-sage/internal/common/config"
)

// ExtractorConfig holds the genre word lists. Everything else is fixed.
type ExtractorConfig struct {
	// Phrases are multi-word genres matched verbatim wherever they start.
	Phrases []string
	// Articles introduce a genre word: "a horror movie".
	Articles []string
	// Triggers follow a genre word: "drama from 2001".
	Triggers []string
	// DenyWords never start a genre: "best drama" yields "drama".
	DenyWords []string
	// Nouns are the words a genre qualifies and is never equal to.
	Nouns []string
}

func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Phrases:   []string{"science fiction"},
		Articles:  []string{"a", "an", "the"},
		Triggers:  []string{"from", "released", "starring", "featuring", "with", "that", "by"},
		DenyWords: []string{"good", "popular", "most", "best", "highest"},
		Nouns:     []string{"movie", "film"},
	}
}

// ExtractorConfigFrom overlays configured word lists on the defaults.
// Empty lists keep the default.
func ExtractorConfigFrom(v config.GenreVocabulary) ExtractorConfig {
	cfg := DefaultExtractorConfig()
	if len(v.Phrases) > 0 {
		cfg.Phrases = v.Phrases
	}
	if len(v.Articles) > 0 {
		cfg.Articles = v.Articles
	}
	if len(v.Triggers) > 0 {
		cfg.Triggers = v.Triggers
	}
	if len(v.DenyWords) > 0 {
		cfg.DenyWords = v.DenyWords
	}
	if len(v.Nouns) > 0 {
		cfg.Nouns = v.Nouns
	}
	return cfg
}

// Extractor pulls request fields out of free text and titles out of catalog
// responses. It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	person *regexp.Regexp
	year   *regexp.Regexp
	title  *regexp.Regexp
	genre  genreScanner
}

func NewExtractor(cfg ExtractorConfig) *Extractor {
	return &Extractor{
		person: regexp.MustCompile(`[A-Z][A-Za-z'-]+(?: [A-Z][A-Za-z'-]+)+`),
		year:   regexp.MustCompile(`(?:19|20)\d{2}`),
		title:  regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`),
		genre:  newGenreScanner(cfg),
	}
}

// Extract runs the three request extractions.
func (e *Extractor) Extract(text string) Params {
	return Params{
		Genre:  e.Genre(text),
		Person: e.Person(text),
		Year:   e.Year(text),
	}
}

// Person returns the first run of two or more capitalized words, without a
// trailing possessive.
func (e *Extractor) Person(text string) string {
	name := e.person.FindString(text)
	return strings.TrimSuffix(name, "'s")
}

// Year returns the first 19xx or 20xx digit window.
func (e *Extractor) Year(text string) string {
	return e.year.FindString(text)
}

// Genre returns the first genre-looking word or phrase.
func (e *Extractor) Genre(text string) string {
	return e.genre.scan(text)
}

// Title returns the first "title" value in a catalog response.
func (e *Extractor) Title(catalogText string) string {
	m := e.title.FindStringSubmatch(catalogText)
	if m == nil {
		return ""
	}
	var title string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &title); err != nil {
		return m[1]
	}
	return title
}
