package signature

import (
	"testing"
)

func TestSignature(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{"EncodeFullySpecified", testEncodeFullySpecified},
		{"EncodeNullsAsX", testEncodeNullsAsX},
		{"EncodeWildcardsAsX", testEncodeWildcardsAsX},
		{"EncodeDeterministic", testEncodeDeterministic},
		{"DecodeExample", testDecodeExample},
		{"DecodeAbsentTokenIsWildcard", testDecodeAbsentTokenIsWildcard},
		{"RoundTrip", testRoundTrip},
		{"DecodeMissingPrefix", testDecodeMissingPrefix},
		{"DecodeMissingPartBlock", testDecodeMissingPartBlock},
		{"FieldMatch", testFieldMatch},
		{"ParseParts", testParseParts},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.fn)
	}
}

func fullSelection() Selection {
	return Selection{
		Bathtub: PartSelection{Category: Value(1), Model: Value(1), Material: Value(1), Color: Value(2)},
		Sink:    PartSelection{Category: Value(2), Model: Value(4), Material: Value(10), Color: Null()},
		Floor:   PartSelection{Category: Value(3), Model: Value(9), Material: Null(), Color: Null()},
	}
}

func testEncodeFullySpecified(t *testing.T) {
	got := Encode(1, 1, fullSelection())
	want := "panorama-1_base-1_bathtub-C1_M1_MAT1_COL2_sink-C2_M4_MAT10_floor-C3_M9.png"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func testEncodeNullsAsX(t *testing.T) {
	sel := fullSelection()
	sel.Bathtub.Color = Null()
	got := Encode(1, 1, sel)
	want := "panorama-1_base-1_bathtub-C1_M1_MAT1_COLx_sink-C2_M4_MAT10_floor-C3_M9.png"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func testEncodeWildcardsAsX(t *testing.T) {
	sel := fullSelection()
	sel.Bathtub.Color = Wildcard()
	sel2 := fullSelection()
	sel2.Bathtub.Color = Null()
	// Wildcard and null are indistinguishable on the encode side.
	if Encode(7, 3, sel) != Encode(7, 3, sel2) {
		t.Fatalf("wildcard and null should both encode as x")
	}
}

func testEncodeDeterministic(t *testing.T) {
	a := Encode(5, 12, fullSelection())
	for i := 0; i < 100; i++ {
		if b := Encode(5, 12, fullSelection()); b != a {
			t.Fatalf("Encode not deterministic: %q vs %q", a, b)
		}
	}
}

func testDecodeExample(t *testing.T) {
	d, err := Decode("panorama-1_base-1_bathtub-C1_M1_MAT1_COLx_sink-C2_M4_MAT10_floor-C3_M9.png")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if d.PanoramaID != 1 || d.BaseAssetID != 1 {
		t.Fatalf("ids = (%d, %d), want (1, 1)", d.PanoramaID, d.BaseAssetID)
	}
	checkValue(t, "bathtub.category", d.Selection.Bathtub.Category, 1)
	checkValue(t, "bathtub.model", d.Selection.Bathtub.Model, 1)
	checkValue(t, "bathtub.material", d.Selection.Bathtub.Material, 1)
	if !d.Selection.Bathtub.Color.IsNull() {
		t.Fatalf("bathtub.color should decode x as null")
	}
	checkValue(t, "sink.category", d.Selection.Sink.Category, 2)
	checkValue(t, "sink.model", d.Selection.Sink.Model, 4)
	checkValue(t, "sink.material", d.Selection.Sink.Material, 10)
	checkValue(t, "floor.category", d.Selection.Floor.Category, 3)
	checkValue(t, "floor.model", d.Selection.Floor.Model, 9)
}

func checkValue(t *testing.T, name string, f Field, want int64) {
	t.Helper()
	v, ok := f.Int()
	if !ok || v != want {
		t.Fatalf("%s = %v, want value %d", name, f, want)
	}
}

func testDecodeAbsentTokenIsWildcard(t *testing.T) {
	// Sink has no COL token and floor has neither MAT nor COL; those fields
	// must decode as wildcards, not nulls.
	d, err := Decode("panorama-1_base-1_bathtub-C1_M1_MAT1_COL2_sink-C2_M4_MAT10_floor-C3_M9.png")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !d.Selection.Sink.Color.IsWildcard() {
		t.Fatalf("sink.color should be wildcard when COL token absent")
	}
	if !d.Selection.Floor.Material.IsWildcard() || !d.Selection.Floor.Color.IsWildcard() {
		t.Fatalf("floor material/color should be wildcards when tokens absent")
	}
}

func testRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		panoramaID int64
		baseID     int64
		sel        Selection
	}{
		{"allValues", 1, 1, fullSelection()},
		{"nullColor", 3, 7, func() Selection {
			s := fullSelection()
			s.Bathtub.Color = Null()
			return s
		}()},
		{"nullModelAndMaterial", 12, 44, func() Selection {
			s := fullSelection()
			s.Bathtub.Model = Null()
			s.Sink.Material = Null()
			return s
		}()},
		{"largeIDs", 999, 1234, Selection{
			Bathtub: PartSelection{Category: Value(101), Model: Value(202), Material: Value(303), Color: Value(404)},
			Sink:    PartSelection{Category: Value(505), Model: Value(606), Material: Value(707), Color: Null()},
			Floor:   PartSelection{Category: Value(808), Model: Value(909), Material: Null(), Color: Null()},
		}},
	}

	for _, c := range cases {
		sig := Encode(c.panoramaID, c.baseID, c.sel)
		d, err := Decode(sig)
		if err != nil {
			t.Fatalf("%s: Decode(%q) failed: %v", c.name, sig, err)
		}
		if d.PanoramaID != c.panoramaID || d.BaseAssetID != c.baseID {
			t.Fatalf("%s: ids = (%d, %d), want (%d, %d)", c.name, d.PanoramaID, d.BaseAssetID, c.panoramaID, c.baseID)
		}
		// Encoded tokens are always present, so decode can only produce
		// values or nulls, never wildcards; emitted fields must round-trip.
		checkFieldEqual(t, c.name+" bathtub.category", d.Selection.Bathtub.Category, c.sel.Bathtub.Category)
		checkFieldEqual(t, c.name+" bathtub.model", d.Selection.Bathtub.Model, c.sel.Bathtub.Model)
		checkFieldEqual(t, c.name+" bathtub.material", d.Selection.Bathtub.Material, c.sel.Bathtub.Material)
		checkFieldEqual(t, c.name+" bathtub.color", d.Selection.Bathtub.Color, c.sel.Bathtub.Color)
		checkFieldEqual(t, c.name+" sink.category", d.Selection.Sink.Category, c.sel.Sink.Category)
		checkFieldEqual(t, c.name+" sink.model", d.Selection.Sink.Model, c.sel.Sink.Model)
		checkFieldEqual(t, c.name+" sink.material", d.Selection.Sink.Material, c.sel.Sink.Material)
		checkFieldEqual(t, c.name+" floor.category", d.Selection.Floor.Category, c.sel.Floor.Category)
		checkFieldEqual(t, c.name+" floor.model", d.Selection.Floor.Model, c.sel.Floor.Model)
	}
}

func checkFieldEqual(t *testing.T, name string, got, want Field) {
	t.Helper()
	if got.IsNull() != want.IsNull() {
		t.Fatalf("%s: null mismatch: got %v, want %v", name, got, want)
	}
	gv, gok := got.Int()
	wv, wok := want.Int()
	if gok != wok || gv != wv {
		t.Fatalf("%s: value mismatch: got %v, want %v", name, got, want)
	}
}

func testDecodeMissingPrefix(t *testing.T) {
	cases := []string{
		"base-1_bathtub-C1_M1_MAT1_COL2_sink-C2_M4_MAT10_floor-C3_M9.png",
		"panorama-1_bathtub-C1_M1_MAT1_COL2_sink-C2_M4_MAT10_floor-C3_M9.png",
		"",
		"not-a-signature.png",
	}
	for _, sig := range cases {
		if _, err := Decode(sig); err == nil {
			t.Fatalf("Decode(%q) should fail", sig)
		}
	}
}

func testDecodeMissingPartBlock(t *testing.T) {
	cases := []string{
		"panorama-1_base-1_sink-C2_M4_MAT10_floor-C3_M9.png",
		"panorama-1_base-1_bathtub-C1_M1_MAT1_COL2_floor-C3_M9.png",
		"panorama-1_base-1_bathtub-C1_M1_MAT1_COL2_sink-C2_M4_MAT10.png",
	}
	for _, sig := range cases {
		if _, err := Decode(sig); err == nil {
			t.Fatalf("Decode(%q) should fail on missing part block", sig)
		}
	}
}

func testFieldMatch(t *testing.T) {
	three := int64(3)
	if !Wildcard().Matches(nil) || !Wildcard().Matches(&three) {
		t.Fatalf("wildcard should match anything")
	}
	if !Null().Matches(nil) {
		t.Fatalf("null should match nil")
	}
	if Null().Matches(&three) {
		t.Fatalf("null should not match a value")
	}
	if !Value(3).Matches(&three) {
		t.Fatalf("value should match equal scene field")
	}
	if Value(3).Matches(nil) {
		t.Fatalf("value should not match nil")
	}
	four := int64(4)
	if Value(3).Matches(&four) {
		t.Fatalf("value should not match different scene field")
	}
}

func testParseParts(t *testing.T) {
	sel := ParseParts("bathtub-C1_M2_MATx_sink-C3_M4")
	checkValue(t, "bathtub.category", sel.Bathtub.Category, 1)
	checkValue(t, "bathtub.model", sel.Bathtub.Model, 2)
	if !sel.Bathtub.Material.IsNull() {
		t.Fatalf("MATx should parse as null")
	}
	if !sel.Bathtub.Color.IsWildcard() {
		t.Fatalf("absent COL should parse as wildcard")
	}
	checkValue(t, "sink.category", sel.Sink.Category, 3)
	if !sel.Floor.Category.IsWildcard() {
		t.Fatalf("absent floor block should parse as all wildcards")
	}
}
