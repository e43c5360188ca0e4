package ai

import "context"

// Entity labels produced by taggers.
const (
	LabelPerson    = "PERSON"
	LabelProduct   = "PRODUCT"
	LabelOrg       = "ORG"
	LabelWorkOfArt = "WORK_OF_ART"
	LabelNounChunk = "NOUN_CHUNK"
)

// Entity is a span of resume text recognized by a tagger.
type Entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Tagger recognizes named entities and noun chunks in free text.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Entity, error)
}

// FirstPerson returns the first PERSON entity or an empty string.
func FirstPerson(entities []Entity) string {
	for _, e := range entities {
		if e.Label == LabelPerson && e.Text != "" {
			return e.Text
		}
	}
	return ""
}
