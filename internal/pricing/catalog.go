package pricing

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Door-size brackets used as keys of Catalog.HingeCosts.
const (
	BracketUpTo36 = "0-36"
	BracketUpTo60 = "36.01-60"
	BracketUpTo82 = "60.01-82"
)

// Catalog is the static price table loaded once at process start.
type Catalog struct {
	// DoorPricing maps style -> finish -> price per square foot.
	DoorPricing map[string]FinishPrices `json:"doorPricing" yaml:"doorPricing"`
	// HingeCosts maps a door-size bracket to the cost of one hinge set.
	HingeCosts  map[string]Number `json:"hingeCosts" yaml:"hingeCosts"`
	CustomPaint FlatPrice         `json:"customPaint" yaml:"customPaint"`

	// PriceSetupDefaults pre-fill the price setup form. They are published to
	// the UI and never substituted for request values by the calculator.
	PriceSetupDefaults PriceDefaults `json:"priceSetupDefaults" yaml:"priceSetupDefaults"`
}

// FinishPrices maps a finish name to a price per square foot. A value that is
// not an object decodes as an empty map, so a broken style entry prices at 0.
type FinishPrices map[string]Number

// UnmarshalJSON implements json.Unmarshaler.
func (p *FinishPrices) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*p = FinishPrices{}
		return nil
	}
	m := map[string]Number{}
	if err := json.Unmarshal(data, &m); err != nil {
		*p = FinishPrices{}
		return nil
	}
	*p = m
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *FinishPrices) UnmarshalYAML(value *yaml.Node) error {
	m := map[string]Number{}
	if value.Kind == yaml.MappingNode {
		if err := value.Decode(&m); err != nil {
			m = map[string]Number{}
		}
	}
	*p = m
	return nil
}

// FlatPrice is a single per-unit price.
type FlatPrice struct {
	Price Number `json:"price" yaml:"price"`
}

// PriceDefaults are the suggested values for the price setup group.
type PriceDefaults struct {
	PricePerDoor           Number `json:"pricePerDoor" yaml:"pricePerDoor"`
	PricePerDrawer         Number `json:"pricePerDrawer" yaml:"pricePerDrawer"`
	PricePerLazySusan      Number `json:"pricePerLazySusan" yaml:"pricePerLazySusan"`
	RefinishingCostPerSqFt Number `json:"refinishingCostPerSqFt" yaml:"refinishingCostPerSqFt"`
	OnSiteMeasuring        Number `json:"onSiteMeasuring" yaml:"onSiteMeasuring"`
	DoorDisposalCost       Number `json:"doorDisposalCost" yaml:"doorDisposalCost"`
}

// PriceFor returns the price per square foot for style and finish, or 0 when
// the combination is unknown.
func (c *Catalog) PriceFor(style, finish string) float64 {
	if c == nil || c.DoorPricing == nil {
		return 0
	}
	finishes, ok := c.DoorPricing[style]
	if !ok {
		return 0
	}
	return finishes[finish].Float64()
}

// HingeCost returns the per-door hinge cost for bracket, or 0 when unset.
func (c *Catalog) HingeCost(bracket string) float64 {
	if c == nil || c.HingeCosts == nil {
		return 0
	}
	return c.HingeCosts[bracket].Float64()
}

// CustomPaintPrice returns the flat price of one custom paint unit.
func (c *Catalog) CustomPaintPrice() float64 {
	if c == nil {
		return 0
	}
	return c.CustomPaint.Price.Float64()
}

// IsEmpty reports whether the catalog carries no pricing tables at all.
func (c *Catalog) IsEmpty() bool {
	return c == nil || (len(c.DoorPricing) == 0 && len(c.HingeCosts) == 0)
}
