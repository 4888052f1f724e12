package scene

import (
	"os"
	"path/filepath"
	"testing"

	"panorama-service/internal/signature"
)

func TestSceneMatcher(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{"WildcardMatchesNullSceneField", testWildcardMatchesNullSceneField},
		{"NullMatchesOnlyNull", testNullMatchesOnlyNull},
		{"ValueRequiresEquality", testValueRequiresEquality},
		{"NoMatchIsNotAnError", testNoMatchIsNotAnError},
		{"SpecificityRanking", testSpecificityRanking},
		{"MatchForPanoramaFilters", testMatchForPanoramaFilters},
		{"TitleSpecificityTieBreak", testTitleSpecificityTieBreak},
		{"TitleNullToken", testTitleNullToken},
		{"LoadManifest", testLoadManifest},
		{"LoadManifestRejectsMissingSceneID", testLoadManifestRejectsMissingSceneID},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.fn)
	}
}

func i64(v int64) *int64 { return &v }

func baseRow(sceneID string) Row {
	return Row{
		SceneID: sceneID,
		Metadata: Meta{
			PanoramaID:  1,
			BaseAssetID: 1,
			Bathtub:     PartMeta{CategoryID: i64(1), ModelID: i64(1), MaterialID: i64(1)},
			Sink:        PartMeta{CategoryID: i64(2), ModelID: i64(4), MaterialID: i64(10)},
			Floor:       PartMeta{CategoryID: i64(3), ModelID: i64(9)},
		},
	}
}

func baseSelection() signature.Selection {
	return signature.Selection{
		Bathtub: signature.PartSelection{
			Category: signature.Value(1), Model: signature.Value(1),
			Material: signature.Value(1), Color: signature.Wildcard(),
		},
		Sink: signature.PartSelection{
			Category: signature.Value(2), Model: signature.Value(4),
			Material: signature.Value(10), Color: signature.Wildcard(),
		},
		Floor: signature.PartSelection{
			Category: signature.Value(3), Model: signature.Value(9),
			Material: signature.Wildcard(), Color: signature.Wildcard(),
		},
	}
}

func testWildcardMatchesNullSceneField(t *testing.T) {
	row := baseRow("scene-a") // bathtub.colorId is null
	sel := baseSelection()
	sel.Bathtub.Color = signature.Wildcard()

	got, ok := Match(sel, []Row{row})
	if !ok || got != "scene-a" {
		t.Fatalf("wildcard color should match null scene color, got (%q, %v)", got, ok)
	}
}

func testNullMatchesOnlyNull(t *testing.T) {
	row := baseRow("scene-a")
	sel := baseSelection()
	sel.Bathtub.Color = signature.Null()

	if got, ok := Match(sel, []Row{row}); !ok || got != "scene-a" {
		t.Fatalf("null color should match null scene color, got (%q, %v)", got, ok)
	}

	colored := baseRow("scene-b")
	colored.Metadata.Bathtub.ColorID = i64(5)
	if _, ok := Match(sel, []Row{colored}); ok {
		t.Fatalf("null color should not match a concrete scene color")
	}
}

func testValueRequiresEquality(t *testing.T) {
	row := baseRow("scene-a") // null colorId
	sel := baseSelection()
	sel.Bathtub.Color = signature.Value(3)

	if _, ok := Match(sel, []Row{row}); ok {
		t.Fatalf("concrete color should not match null scene color")
	}

	colored := baseRow("scene-b")
	colored.Metadata.Bathtub.ColorID = i64(3)
	if got, ok := Match(sel, []Row{colored}); !ok || got != "scene-b" {
		t.Fatalf("concrete color should match equal scene color, got (%q, %v)", got, ok)
	}
}

func testNoMatchIsNotAnError(t *testing.T) {
	sel := baseSelection()
	sel.Bathtub.Category = signature.Value(99)
	if got, ok := Match(sel, []Row{baseRow("scene-a")}); ok || got != "" {
		t.Fatalf("expected no match, got (%q, %v)", got, ok)
	}
	if got, ok := Match(sel, nil); ok || got != "" {
		t.Fatalf("empty catalog should yield no match, got (%q, %v)", got, ok)
	}
}

func testSpecificityRanking(t *testing.T) {
	// Partial row matches anything in the category/model; the full row pins
	// material and color too. Both satisfy the selection, the fuller wins.
	partial := Row{
		SceneID: "scene-partial",
		Metadata: Meta{
			PanoramaID: 1,
			Bathtub:    PartMeta{CategoryID: i64(1), ModelID: i64(1)},
			Sink:       PartMeta{CategoryID: i64(2), ModelID: i64(4)},
			Floor:      PartMeta{CategoryID: i64(3), ModelID: i64(9)},
		},
	}
	full := baseRow("scene-full")
	full.Metadata.Bathtub.ColorID = i64(2)

	sel := baseSelection()
	sel.Bathtub.Material = signature.Wildcard()
	sel.Sink.Material = signature.Wildcard()
	sel.Bathtub.Color = signature.Wildcard()

	got, ok := Match(sel, []Row{partial, full})
	if !ok || got != "scene-full" {
		t.Fatalf("more specific row should win, got (%q, %v)", got, ok)
	}
}

func testMatchForPanoramaFilters(t *testing.T) {
	other := baseRow("scene-other")
	other.Metadata.PanoramaID = 2
	mine := baseRow("scene-mine")

	got, ok := MatchForPanorama(baseSelection(), 1, []Row{other, mine})
	if !ok || got != "scene-mine" {
		t.Fatalf("expected panorama-filtered match, got (%q, %v)", got, ok)
	}
	if _, ok := MatchForPanorama(baseSelection(), 3, []Row{other, mine}); ok {
		t.Fatalf("no rows for panorama 3, expected no match")
	}
}

func testTitleSpecificityTieBreak(t *testing.T) {
	titles := []Title{
		{SceneID: "scene-generic", Title: "bathtub-C1_M1_sink-C2_M4_floor-C3_M9"},
		{SceneID: "scene-specific", Title: "bathtub-C1_M1_MAT1_COL2_sink-C2_M4_floor-C3_M9"},
	}

	sel := baseSelection()
	sel.Bathtub.Material = signature.Value(1)
	sel.Bathtub.Color = signature.Value(2)

	got, ok := MatchTitles(sel, titles)
	if !ok || got != "scene-specific" {
		t.Fatalf("more specific title should win, got (%q, %v)", got, ok)
	}

	// With a material the specific title does not carry, only the generic
	// one still matches.
	sel.Bathtub.Material = signature.Value(7)
	got, ok = MatchTitles(sel, titles)
	if !ok || got != "scene-generic" {
		t.Fatalf("generic title should match when specific one conflicts, got (%q, %v)", got, ok)
	}
}

func testTitleNullToken(t *testing.T) {
	titles := []Title{
		{SceneID: "scene-nocolor", Title: "bathtub-C1_M1_MAT1_COLx_sink-C2_M4_floor-C3_M9"},
	}
	sel := baseSelection()
	sel.Bathtub.Material = signature.Value(1)

	sel.Bathtub.Color = signature.Null()
	if got, ok := MatchTitles(sel, titles); !ok || got != "scene-nocolor" {
		t.Fatalf("null selection should match COLx title, got (%q, %v)", got, ok)
	}

	sel.Bathtub.Color = signature.Value(3)
	if _, ok := MatchTitles(sel, titles); ok {
		t.Fatalf("concrete color should not match COLx title")
	}
}

func testLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenes.json")
	content := `[
		{"sceneId": "scene-a", "metadata": {
			"panorama_id": 1, "base_asset_id": 1,
			"bathtub": {"categoryId": 1, "modelId": 1, "materialId": 1, "colorId": null},
			"sink": {"categoryId": 2, "modelId": 4, "materialId": 10},
			"floor": {"categoryId": 3, "modelId": 9}
		}}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if len(rows) != 1 || rows[0].SceneID != "scene-a" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].Metadata.Bathtub.ColorID != nil {
		t.Fatalf("null colorId should load as nil")
	}
	if rows[0].Metadata.Sink.MaterialID == nil || *rows[0].Metadata.Sink.MaterialID != 10 {
		t.Fatalf("sink materialId should load as 10")
	}
}

func testLoadManifestRejectsMissingSceneID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenes.json")
	if err := os.WriteFile(path, []byte(`[{"metadata": {"panorama_id": 1}}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("manifest row without sceneId should fail")
	}
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing manifest file should fail")
	}
}
