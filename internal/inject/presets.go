// internal/inject/presets.go
package inject

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
)

// FieldValue assigns one numeric value to one input field, addressed by the
// host's fixed element id.
type FieldValue struct {
	FieldID string
	Value   float64
}

// PresetDefinition is one labelled group of field assignments. Pure
// configuration data; never mutated at runtime.
type PresetDefinition struct {
	Label  string
	Fields []FieldValue
}

// Host field ids on the shipment detail form.
const (
	WeightFieldID = "shipment-weight"
	LengthFieldID = "dim-length"
	WidthFieldID  = "dim-width"
	HeightFieldID = "dim-height"
)

// WeightPresets are the common parcel weights, in kilograms.
var WeightPresets = []PresetDefinition{
	{Label: "250 g", Fields: []FieldValue{{WeightFieldID, 0.25}}},
	{Label: "500 g", Fields: []FieldValue{{WeightFieldID, 0.5}}},
	{Label: "1 kg", Fields: []FieldValue{{WeightFieldID, 1}}},
	{Label: "2 kg", Fields: []FieldValue{{WeightFieldID, 2}}},
	{Label: "5 kg", Fields: []FieldValue{{WeightFieldID, 5}}},
}

// DimensionPresets are the stocked box sizes, in centimeters.
var DimensionPresets = []PresetDefinition{
	{Label: "Small box", Fields: []FieldValue{{LengthFieldID, 23}, {WidthFieldID, 17}, {HeightFieldID, 9}}},
	{Label: "Medium box", Fields: []FieldValue{{LengthFieldID, 39}, {WidthFieldID, 29}, {HeightFieldID, 19}}},
	{Label: "Large box", Fields: []FieldValue{{LengthFieldID, 59}, {WidthFieldID, 39}, {HeightFieldID, 29}}},
}

// presetInjector renders one preset table next to its anchor field.
type presetInjector struct {
	name        string
	containerID string
	anchorSel   string
	presets     []PresetDefinition
}

// NewWeightPresets returns the weight preset button row.
func NewWeightPresets() Injector {
	return &presetInjector{
		name:        "weight-presets",
		containerID: WeightPresetsID,
		anchorSel:   "#" + WeightFieldID,
		presets:     WeightPresets,
	}
}

// NewDimensionPresets returns the box dimension preset button row.
func NewDimensionPresets() Injector {
	return &presetInjector{
		name:        "dimension-presets",
		containerID: DimensionPresetsID,
		anchorSel:   "#" + HeightFieldID,
		presets:     DimensionPresets,
	}
}

func (p *presetInjector) Name() string { return p.name }

func (p *presetInjector) Apply(ctx context.Context, pc pagectx.Context, snap *dom.Snapshot, mut Mutator) error {
	if pc != pagectx.ShipmentDetail {
		return nil
	}
	if snap.HasID(p.containerID) {
		return nil
	}
	// No anchor field on this render yet; try again next tick.
	anchorID := strings.TrimPrefix(p.anchorSel, "#")
	if !snap.HasID(anchorID) {
		return nil
	}
	return mut.InsertAdjacentHTML(ctx, p.anchorSel, "afterend", p.markup())
}

// markup renders the button row. The buttons carry data attributes consumed
// by the page bootstrap script, which writes the values into the host fields
// and fires input events so the host's listeners observe the change.
func (p *presetInjector) markup() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="%s" class="lp-presets">`, p.containerID)
	for _, preset := range p.presets {
		var assigns []string
		for _, fv := range preset.Fields {
			assigns = append(assigns, fv.FieldID+"="+strconv.FormatFloat(fv.Value, 'f', -1, 64))
		}
		fmt.Fprintf(&b, `<button type="button" class="lp-preset" data-lp-set="%s">%s</button>`,
			html.EscapeString(strings.Join(assigns, ";")), html.EscapeString(preset.Label))
	}
	b.WriteString(`</div>`)
	return b.String()
}
