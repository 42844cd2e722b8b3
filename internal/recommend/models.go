// internal/recommend/models.go
package recommend

// Params are the fields extracted from a request. "" means not mentioned.
type Params struct {
	Genre  string `json:"genre"`
	Person string `json:"person"`
	Year   string `json:"year"`
}

// Identifiers are catalog ids resolved from Params. "" means unresolved.
type Identifiers struct {
	GenreID  string `json:"genreId"`
	PersonID string `json:"personId"`
}

// Result is everything one pipeline run produced.
type Result struct {
	RequestID   string      `json:"requestId"`
	Params      Params      `json:"params"`
	Identifiers Identifiers `json:"identifiers"`
	Filter      string      `json:"filter"`
	Title       string      `json:"title"`
	Reply       string      `json:"reply"`
}

// Found reports whether the catalog produced a title.
func (r *Result) Found() bool {
	return r.Title != ""
}
