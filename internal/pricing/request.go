package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Section is one door/drawer grouping priced on its own. Height and Width are
// in inches.
type Section struct {
	DoorStyle   string `json:"doorStyle"`
	DrawerStyle string `json:"drawerStyle"`
	Finish      string `json:"finish"`
	Height      Number `json:"height"`
	Width       Number `json:"width"`
}

// PieceCounts holds door counts bucketed by size plus drawer and lazy-susan
// quantities.
type PieceCounts struct {
	Doors0To36   Count `json:"doors_0_36"`
	Doors36To60  Count `json:"doors_36_60"`
	Doors60To82  Count `json:"doors_60_82"`
	NumDrawers   Count `json:"numDrawers"`
	LazySusanQty Count `json:"lazySusanQty"`
	// TotalDoors is the physical door count entered by the user. When zero it
	// is derived from the three brackets.
	TotalDoors Count `json:"totalDoors"`
}

// Doors returns the physical door count used for installation and disposal.
func (p PieceCounts) Doors() int {
	if p.TotalDoors > 0 {
		return p.TotalDoors.Int()
	}
	return p.Doors0To36.Int() + p.Doors36To60.Int() + p.Doors60To82.Int()
}

// SpecialFeatures are the optional add-ons of a quote.
type SpecialFeatures struct {
	CustomPaintQty    Count        `json:"customPaintQty"`
	CalculateDisposal DisposalFlag `json:"calculateDisposal"`
}

// PriceSetup carries the caller-adjustable unit prices and flat fees.
type PriceSetup struct {
	PricePerDoor           Number `json:"pricePerDoor"`
	PricePerDrawer         Number `json:"pricePerDrawer"`
	PricePerLazySusan      Number `json:"pricePerLazySusan"`
	RefinishingCostPerSqFt Number `json:"refinishingCostPerSqFt"`
	OnSiteMeasuring        Number `json:"onSiteMeasuring"`
	DoorDisposalCost       Number `json:"doorDisposalCost"`
	// OnSiteMeasuringSqFt is the total square footage as measured by the
	// caller. It is taken as given and never recomputed from sections.
	OnSiteMeasuringSqFt Number `json:"onSiteMeasuringSqFt"`
	// CalculateDisposal is where older form revisions send the disposal flag.
	CalculateDisposal DisposalFlag `json:"calculateDisposal,omitempty"`
}

// QuoteRequest is a snapshot of the estimate form.
type QuoteRequest struct {
	// Sections keeps request order. A nil entry stands for a malformed
	// element and is skipped by the calculator.
	Sections        []*Section
	PieceCounts     *PieceCounts
	SpecialFeatures SpecialFeatures
	PriceSetup      *PriceSetup
}

// DisposalFlag resolves the disposal switch: specialFeatures wins, then
// priceSetup, and an unset flag means "no".
func (r QuoteRequest) DisposalFlag() DisposalFlag {
	flag := r.SpecialFeatures.CalculateDisposal
	if flag == "" && r.PriceSetup != nil {
		flag = r.PriceSetup.CalculateDisposal
	}
	if flag.Enabled() {
		return DisposalYes
	}
	return DisposalNo
}

func (r QuoteRequest) validate() error {
	if r.Sections == nil {
		return fmt.Errorf("%w: sections must be a list", ErrMalformedRequest)
	}
	if r.PieceCounts == nil {
		return fmt.Errorf("%w: piece counts are required", ErrMalformedRequest)
	}
	if r.PriceSetup == nil {
		return fmt.Errorf("%w: price setup is required", ErrMalformedRequest)
	}
	p := r.PieceCounts
	for _, c := range []Count{p.Doors0To36, p.Doors36To60, p.Doors60To82, p.NumDrawers, p.LazySusanQty, p.TotalDoors, r.SpecialFeatures.CustomPaintQty} {
		if !c.inRange() {
			return fmt.Errorf("%w: %v", ErrMalformedRequest, errCountOutOfRange)
		}
	}
	return nil
}

type wireRequest struct {
	Sections        json.RawMessage `json:"sections"`
	PieceCounts     json.RawMessage `json:"pieceCounts"`
	Part2           json.RawMessage `json:"part2"`
	SpecialFeatures json.RawMessage `json:"specialFeatures"`
	Part3           json.RawMessage `json:"part3"`
	PriceSetup      json.RawMessage `json:"priceSetup"`
}

// DecodeRequest parses a JSON request body. The form's legacy group names
// part2 and part3 are accepted for pieceCounts and specialFeatures.
func DecodeRequest(data []byte) (QuoteRequest, error) {
	var wire wireRequest
	if err := json.Unmarshal(data, &wire); err != nil {
		return QuoteRequest{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	if leadingByte(wire.Sections) != '[' {
		return QuoteRequest{}, fmt.Errorf("%w: sections must be a list", ErrMalformedRequest)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(wire.Sections, &items); err != nil {
		return QuoteRequest{}, fmt.Errorf("%w: sections: %v", ErrMalformedRequest, err)
	}

	req := QuoteRequest{Sections: make([]*Section, 0, len(items))}
	for _, item := range items {
		req.Sections = append(req.Sections, decodeSection(item))
	}

	countsRaw := firstPresent(wire.PieceCounts, wire.Part2)
	if leadingByte(countsRaw) != '{' {
		return QuoteRequest{}, fmt.Errorf("%w: piece counts are required", ErrMalformedRequest)
	}
	var counts PieceCounts
	if err := json.Unmarshal(countsRaw, &counts); err != nil {
		return QuoteRequest{}, fmt.Errorf("%w: piece counts: %v", ErrMalformedRequest, err)
	}
	req.PieceCounts = &counts

	if leadingByte(wire.PriceSetup) != '{' {
		return QuoteRequest{}, fmt.Errorf("%w: price setup is required", ErrMalformedRequest)
	}
	var setup PriceSetup
	if err := json.Unmarshal(wire.PriceSetup, &setup); err != nil {
		return QuoteRequest{}, fmt.Errorf("%w: price setup: %v", ErrMalformedRequest, err)
	}
	req.PriceSetup = &setup

	// Special features are optional; a missing or odd group reads as zeros.
	if featuresRaw := firstPresent(wire.SpecialFeatures, wire.Part3); leadingByte(featuresRaw) == '{' {
		if err := json.Unmarshal(featuresRaw, &req.SpecialFeatures); errors.Is(err, errCountOutOfRange) {
			return QuoteRequest{}, fmt.Errorf("%w: special features: %v", ErrMalformedRequest, err)
		}
	}

	return req, nil
}

func decodeSection(raw json.RawMessage) *Section {
	if leadingByte(raw) != '{' {
		return nil
	}
	var s Section
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func firstPresent(primary, alias json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(primary)) > 0 && leadingByte(primary) != 'n' {
		return primary
	}
	return alias
}

func leadingByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
