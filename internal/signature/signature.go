// Package signature implements the canonical string encoding of a furniture
// selection plus its panorama/base-asset pair, and the reverse parsing.
//
// A full signature looks like:
//
//	panorama-1_base-1_bathtub-C1_M1_MAT1_COLx_sink-C2_M4_MAT10_floor-C3_M9.png
//
// Numeric fields that are null (or wildcard, on encode) render as the literal
// "x". On decode, "x" becomes an explicit null while a token missing from the
// string entirely becomes a wildcard. The two are not interchangeable: null
// matches only scenes where the field is also absent, a wildcard matches
// anything.
package signature

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type fieldState int

const (
	stateWildcard fieldState = iota
	stateNull
	stateValue
)

// Field is a tri-state selection value: wildcard ("match any"), null
// ("must be absent"), or a concrete id.
type Field struct {
	state fieldState
	value int64
}

// Wildcard returns a field that matches any scene value.
func Wildcard() Field { return Field{state: stateWildcard} }

// Null returns a field requiring the scene value to be absent.
func Null() Field { return Field{state: stateNull} }

// Value returns a field requiring exact equality with id.
func Value(id int64) Field { return Field{state: stateValue, value: id} }

// IsWildcard reports whether the field matches any scene value.
func (f Field) IsWildcard() bool { return f.state == stateWildcard }

// IsNull reports whether the field requires an absent scene value.
func (f Field) IsNull() bool { return f.state == stateNull }

// Int returns the concrete id and whether the field holds one.
func (f Field) Int() (int64, bool) {
	return f.value, f.state == stateValue
}

// Matches applies the tri-state rule against a nullable scene field.
func (f Field) Matches(scene *int64) bool {
	switch f.state {
	case stateWildcard:
		return true
	case stateNull:
		return scene == nil
	default:
		return scene != nil && *scene == f.value
	}
}

func (f Field) String() string {
	if f.state == stateValue {
		return strconv.FormatInt(f.value, 10)
	}
	return "x"
}

// PartSelection is the selection for a single furniture part. Which fields
// are meaningful depends on the part: bathtubs carry all four, sinks have no
// color, floors have neither material nor color.
type PartSelection struct {
	Category Field
	Model    Field
	Material Field
	Color    Field
}

// Selection is a full per-request user choice across the three parts.
type Selection struct {
	Bathtub PartSelection
	Sink    PartSelection
	Floor   PartSelection
}

// Decoded is the structured form of a parsed signature.
type Decoded struct {
	PanoramaID  int64
	BaseAssetID int64
	Selection   Selection
}

// Encode renders the canonical signature for a selection. It is a pure
// function: identical inputs always produce byte-identical strings. Null and
// wildcard fields both render as "x"; the distinction exists only on decode.
func Encode(panoramaID, baseAssetID int64, sel Selection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "panorama-%d_base-%d", panoramaID, baseAssetID)
	fmt.Fprintf(&b, "_bathtub-C%s_M%s_MAT%s_COL%s",
		sel.Bathtub.Category, sel.Bathtub.Model, sel.Bathtub.Material, sel.Bathtub.Color)
	fmt.Fprintf(&b, "_sink-C%s_M%s_MAT%s",
		sel.Sink.Category, sel.Sink.Model, sel.Sink.Material)
	fmt.Fprintf(&b, "_floor-C%s_M%s", sel.Floor.Category, sel.Floor.Model)
	b.WriteString(".png")
	return b.String()
}

var (
	panoramaRe = regexp.MustCompile(`panorama-(\d+)`)
	baseRe     = regexp.MustCompile(`base-(\d+)`)

	// Part blocks run up to the next part label or the extension.
	bathtubRe = regexp.MustCompile(`bathtub-([^.]*?)(?:_sink-|_floor-|\.|$)`)
	sinkRe    = regexp.MustCompile(`sink-([^.]*?)(?:_bathtub-|_floor-|\.|$)`)
	floorRe   = regexp.MustCompile(`floor-([^.]*?)(?:_bathtub-|_sink-|\.|$)`)

	categoryRe = regexp.MustCompile(`(?:^|_)C(x|\d+)`)
	modelRe    = regexp.MustCompile(`(?:^|_)M(x|\d+)`)
	materialRe = regexp.MustCompile(`(?:^|_)MAT(x|\d+)`)
	colorRe    = regexp.MustCompile(`(?:^|_)COL(x|\d+)`)
)

// Decode parses a signature back into its structured form. "x" tokens decode
// to null; tokens absent from a part block decode to wildcard. It fails when
// the panorama-/base- prefix or any of the three part blocks is missing.
func Decode(sig string) (Decoded, error) {
	var d Decoded

	pm := panoramaRe.FindStringSubmatch(sig)
	if pm == nil {
		return d, errors.Errorf("signature %q: missing panorama token", sig)
	}
	bm := baseRe.FindStringSubmatch(sig)
	if bm == nil {
		return d, errors.Errorf("signature %q: missing base token", sig)
	}

	// The regexes above only admit digits.
	d.PanoramaID, _ = strconv.ParseInt(pm[1], 10, 64)
	d.BaseAssetID, _ = strconv.ParseInt(bm[1], 10, 64)

	bathtub, err := decodePart(sig, "bathtub", bathtubRe)
	if err != nil {
		return d, err
	}
	sink, err := decodePart(sig, "sink", sinkRe)
	if err != nil {
		return d, err
	}
	floor, err := decodePart(sig, "floor", floorRe)
	if err != nil {
		return d, err
	}

	d.Selection = Selection{Bathtub: bathtub, Sink: sink, Floor: floor}
	return d, nil
}

func decodePart(sig, name string, blockRe *regexp.Regexp) (PartSelection, error) {
	m := blockRe.FindStringSubmatch(sig)
	if m == nil {
		return PartSelection{}, errors.Errorf("signature %q: missing %s block", sig, name)
	}
	block := m[1]
	return PartSelection{
		Category: decodeToken(block, categoryRe),
		Model:    decodeToken(block, modelRe),
		Material: decodeToken(block, materialRe),
		Color:    decodeToken(block, colorRe),
	}, nil
}

// ParseParts extracts per-part tokens from free text using the signature
// token grammar. Unlike Decode it tolerates missing prefixes and part blocks:
// anything absent parses as a wildcard. Legacy scene titles are parsed this
// way.
func ParseParts(s string) Selection {
	parsePart := func(blockRe *regexp.Regexp) PartSelection {
		m := blockRe.FindStringSubmatch(s)
		if m == nil {
			return PartSelection{}
		}
		return PartSelection{
			Category: decodeToken(m[1], categoryRe),
			Model:    decodeToken(m[1], modelRe),
			Material: decodeToken(m[1], materialRe),
			Color:    decodeToken(m[1], colorRe),
		}
	}
	return Selection{
		Bathtub: parsePart(bathtubRe),
		Sink:    parsePart(sinkRe),
		Floor:   parsePart(floorRe),
	}
}

func decodeToken(block string, re *regexp.Regexp) Field {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return Wildcard()
	}
	if m[1] == "x" {
		return Null()
	}
	v, _ := strconv.ParseInt(m[1], 10, 64)
	return Value(v)
}
