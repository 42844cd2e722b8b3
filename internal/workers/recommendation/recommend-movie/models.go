// internal/workers/recommendation/recommend-movie/models.go
package recommendmovie

import "cinema-sage/internal/common/validation"

type Input struct {
	Request string `json:"request"`
}

type Output struct {
	Reply     string `json:"reply"`
	Title     string `json:"title"`
	Genre     string `json:"genre"`
	Person    string `json:"person"`
	Year      string `json:"year"`
	GenreID   string `json:"genreId"`
	PersonID  string `json:"personId"`
	Filter    string `json:"filter"`
	RequestID string `json:"requestId"`
}

// inputSchema guards job variables before they reach the pipeline. Other
// process variables may ride along with the request.
var inputSchema = validation.MustSchema(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"request": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 1000,
		},
	},
	"required": []interface{}{"request"},
})
