package scene

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"

	"panorama-service/internal/signature"
)

// LoadTitles reads the legacy title catalog: scenes whose render
// configuration is only encoded in a free-text title.
func LoadTitles(path string) ([]Title, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read scene titles")
	}
	var titles []Title
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, errors.Wrap(err, "could not parse scene titles")
	}
	for i, t := range titles {
		if t.SceneID == "" || t.Title == "" {
			return nil, errors.Errorf("scene titles: row %d is incomplete", i)
		}
	}
	return titles, nil
}

// parsedTitle caches the token parse of a legacy title alongside how many
// tokens the title actually specifies.
type parsedTitle struct {
	sceneID     string
	fields      signature.Selection
	specificity int
}

func parseTitle(t Title) parsedTitle {
	sel := signature.ParseParts(t.Title)
	return parsedTitle{
		sceneID:     t.SceneID,
		fields:      sel,
		specificity: countSpecified(sel),
	}
}

func countSpecified(sel signature.Selection) int {
	n := 0
	for _, f := range []signature.Field{
		sel.Bathtub.Category, sel.Bathtub.Model, sel.Bathtub.Material, sel.Bathtub.Color,
		sel.Sink.Category, sel.Sink.Model, sel.Sink.Material,
		sel.Floor.Category, sel.Floor.Model,
	} {
		if !f.IsWildcard() {
			n++
		}
	}
	return n
}

// titleFieldMatches compares a selection field against a title-derived scene
// field. A token absent from the title leaves the scene side unconstrained.
func titleFieldMatches(sel, scene signature.Field) bool {
	if scene.IsWildcard() {
		return true
	}
	if scene.IsNull() {
		return sel.Matches(nil)
	}
	v, _ := scene.Int()
	return sel.Matches(&v)
}

func titleMatches(sel signature.Selection, t parsedTitle) bool {
	return titleFieldMatches(sel.Bathtub.Category, t.fields.Bathtub.Category) &&
		titleFieldMatches(sel.Bathtub.Model, t.fields.Bathtub.Model) &&
		titleFieldMatches(sel.Bathtub.Material, t.fields.Bathtub.Material) &&
		titleFieldMatches(sel.Bathtub.Color, t.fields.Bathtub.Color) &&
		titleFieldMatches(sel.Sink.Category, t.fields.Sink.Category) &&
		titleFieldMatches(sel.Sink.Model, t.fields.Sink.Model) &&
		titleFieldMatches(sel.Sink.Material, t.fields.Sink.Material) &&
		titleFieldMatches(sel.Floor.Category, t.fields.Floor.Category) &&
		titleFieldMatches(sel.Floor.Model, t.fields.Floor.Model)
}

// MatchTitles resolves a selection against legacy free-text scene titles.
// Titles are parsed with the signature token grammar, sorted by descending
// specificity (number of tokens the title pins down), and the first match
// wins, so fully-specified titles beat partial ones.
func MatchTitles(sel signature.Selection, titles []Title) (string, bool) {
	parsed := make([]parsedTitle, 0, len(titles))
	for _, t := range titles {
		parsed = append(parsed, parseTitle(t))
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].specificity > parsed[j].specificity
	})
	for _, p := range parsed {
		if titleMatches(sel, p) {
			return p.sceneID, true
		}
	}
	return "", false
}
