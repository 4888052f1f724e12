// Package scene resolves a furniture selection to a pre-rendered scene.
package scene

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"

	"panorama-service/internal/signature"
)

// PartMeta holds the nullable selection fields a scene was rendered with.
type PartMeta struct {
	CategoryID *int64 `json:"categoryId"`
	ModelID    *int64 `json:"modelId"`
	MaterialID *int64 `json:"materialId,omitempty"`
	ColorID    *int64 `json:"colorId,omitempty"`
}

// Meta describes the full render configuration of a scene.
type Meta struct {
	PanoramaID  int64    `json:"panorama_id"`
	BaseAssetID int64    `json:"base_asset_id"`
	Bathtub     PartMeta `json:"bathtub"`
	Sink        PartMeta `json:"sink"`
	Floor       PartMeta `json:"floor"`
}

// Row is one catalog entry of the scene manifest. Rows are immutable once
// loaded; many rows exist per panorama and the matcher picks at most one.
type Row struct {
	SceneID  string `json:"sceneId"`
	Metadata Meta   `json:"metadata"`
}

// Title is a legacy catalog entry whose render configuration is only encoded
// in its free-text title, using the same token grammar as signatures.
type Title struct {
	SceneID string `json:"sceneId"`
	Title   string `json:"title"`
}

// LoadManifest reads the static scene manifest consumed at boot.
func LoadManifest(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read scene manifest")
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "could not parse scene manifest")
	}
	for i, r := range rows {
		if r.SceneID == "" {
			return nil, errors.Errorf("scene manifest: row %d has no sceneId", i)
		}
	}
	return rows, nil
}

// rowMatches applies the tri-state field rule across all parts: wildcard
// selection fields match anything, null fields match only null scene fields,
// concrete fields require equality.
func rowMatches(sel signature.Selection, m Meta) bool {
	return sel.Bathtub.Category.Matches(m.Bathtub.CategoryID) &&
		sel.Bathtub.Model.Matches(m.Bathtub.ModelID) &&
		sel.Bathtub.Material.Matches(m.Bathtub.MaterialID) &&
		sel.Bathtub.Color.Matches(m.Bathtub.ColorID) &&
		sel.Sink.Category.Matches(m.Sink.CategoryID) &&
		sel.Sink.Model.Matches(m.Sink.ModelID) &&
		sel.Sink.Material.Matches(m.Sink.MaterialID) &&
		sel.Floor.Category.Matches(m.Floor.CategoryID) &&
		sel.Floor.Model.Matches(m.Floor.ModelID)
}

// specificity counts the render fields a scene actually pins down. More
// fully-specified scenes win ties during matching.
func specificity(m Meta) int {
	n := 0
	for _, f := range []*int64{
		m.Bathtub.CategoryID, m.Bathtub.ModelID, m.Bathtub.MaterialID, m.Bathtub.ColorID,
		m.Sink.CategoryID, m.Sink.ModelID, m.Sink.MaterialID,
		m.Floor.CategoryID, m.Floor.ModelID,
	} {
		if f != nil {
			n++
		}
	}
	return n
}

// Match returns the scene best matching the selection, ranking candidates by
// descending specificity so that more fully-specified scenes win. The second
// return is false when no scene matches; that is not an error, it means no
// pre-rendered composite exists for the exact combination and callers fall
// back to a default scene.
func Match(sel signature.Selection, rows []Row) (string, bool) {
	ranked := make([]Row, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return specificity(ranked[i].Metadata) > specificity(ranked[j].Metadata)
	})
	for _, r := range ranked {
		if rowMatches(sel, r.Metadata) {
			return r.SceneID, true
		}
	}
	return "", false
}

// MatchForPanorama is Match restricted to scenes of a single panorama.
func MatchForPanorama(sel signature.Selection, panoramaID int64, rows []Row) (string, bool) {
	filtered := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Metadata.PanoramaID == panoramaID {
			filtered = append(filtered, r)
		}
	}
	return Match(sel, filtered)
}
