package pricing

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"
)

const (
	squareInchesPerSqFt = 144

	// Flat surcharge per lazy-susan unit, independent of the price setup.
	lazySusanSurchargePerUnit = 50
	// A removed lazy susan leaves two panels to haul away.
	lazySusanDisposalUnits = 2

	areaPlaces  = 4
	moneyPlaces = 2
)

// SectionCost is the priced result of one section.
type SectionCost struct {
	Index            int     `json:"index"`
	DoorStyle        string  `json:"doorStyle"`
	DrawerStyle      string  `json:"drawerStyle"`
	Finish           string  `json:"finish"`
	Area             float64 `json:"area"`
	DoorCost         float64 `json:"doorCost"`
	DrawerCost       float64 `json:"drawerCost"`
	TotalSectionCost float64 `json:"totalSectionCost"`
}

// SpecialFeaturesCost groups the add-on charges.
type SpecialFeaturesCost struct {
	CustomPaintCost float64 `json:"customPaintCost"`
}

// Installation is the labor charge split by piece type.
type Installation struct {
	DoorInstall      float64 `json:"doorInstall"`
	DrawerInstall    float64 `json:"drawerInstall"`
	LazySusanInstall float64 `json:"lazySusanInstall"`
	TotalInstall     float64 `json:"totalInstall"`
}

// Disposal is the haul-away charge and the units it was computed from.
type Disposal struct {
	Cost                  float64 `json:"disposalCost"`
	DoorsForDisposal      int     `json:"doorsForDisposal"`
	DrawersForDisposal    int     `json:"drawersForDisposal"`
	LazySusansForDisposal int     `json:"lazySusansForDisposal"`
	Units                 int     `json:"disposalUnits"`
}

// Breakdown is the full result of a quote calculation. Monetary values are
// rounded to cents.
type Breakdown struct {
	OverallTotal    float64             `json:"overallTotal"`
	DoorCostTotal   float64             `json:"doorCostTotal"`
	CostToInstaller float64             `json:"costToInstaller"`
	ProfitMargin    float64             `json:"profitMargin"`
	HingeCost       float64             `json:"hingeCost"`
	HingeCount      int                 `json:"hingeCount"`
	SpecialFeatures SpecialFeaturesCost `json:"specialFeatures"`
	RefinishingCost float64             `json:"refinishingCost"`
	MeasuringCost   float64             `json:"measuringCost"`
	Installation    Installation        `json:"installation"`
	Disposal
	LazySusanSurcharge  float64 `json:"lazySusanSurcharge"`
	TotalSqFt           float64 `json:"totalSqFt"`
	DisplayedTotalDoors int     `json:"displayedTotalDoors"`

	Sections        []SectionCost `json:"sections"`
	SkippedSections []int         `json:"skippedSections,omitempty"`

	// Echoed inputs so the form can re-render its state from the response.
	Part2      PieceCounts `json:"part2"`
	PriceSetup PriceSetup  `json:"priceSetup"`
}

// Calculator computes breakdowns against a fixed catalog.
type Calculator struct {
	catalog *Catalog
	logger  *slog.Logger
}

// NewCalculator returns a Calculator bound to catalog. A nil logger falls
// back to slog.Default.
func NewCalculator(catalog *Catalog, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{catalog: catalog, logger: logger}
}

// Catalog returns the catalog the calculator prices against.
func (c *Calculator) Catalog() *Catalog { return c.catalog }

// Calculate prices req against catalog using the default logger.
func Calculate(req QuoteRequest, catalog *Catalog) (Breakdown, error) {
	return NewCalculator(catalog, nil).Calculate(req)
}

// Calculate prices a quote request. It fails with ErrMissingCatalog when no
// pricing tables are loaded and with ErrMalformedRequest when a required
// group is missing. Malformed sections are skipped.
func (c *Calculator) Calculate(req QuoteRequest) (Breakdown, error) {
	if c.catalog.IsEmpty() {
		return Breakdown{}, ErrMissingCatalog
	}
	if err := req.validate(); err != nil {
		return Breakdown{}, err
	}
	counts := *req.PieceCounts
	setup := *req.PriceSetup

	materials := decimal.Zero
	sections := make([]SectionCost, 0, len(req.Sections))
	var skipped []int
	for i, s := range req.Sections {
		if s == nil {
			c.logger.Warn("skipping malformed section", "index", i)
			skipped = append(skipped, i)
			continue
		}
		amounts := sectionAmountsFor(*s, c.catalog)
		materials = materials.Add(amounts.total())
		sections = append(sections, amounts.result(i, *s))
	}

	hinge := hingeCost(counts, c.catalog.HingeCosts)
	paint := customPaintCost(req.SpecialFeatures.CustomPaintQty.Int(), c.catalog.CustomPaintPrice())
	sqFt := dec(setup.OnSiteMeasuringSqFt.Float64())
	refinishing := sqFt.Mul(dec(setup.RefinishingCostPerSqFt.Float64()))
	measuring := dec(setup.OnSiteMeasuring.Float64())
	install := installationAmounts(setup, counts)
	flag := req.DisposalFlag()
	disposal, disposalCost := disposalFor(counts, setup.DoorDisposalCost.Float64(), flag.Enabled())
	surcharge := lazySusanSurcharge(counts.LazySusanQty.Int())

	costToInstaller := materials.Add(hinge)
	overall := decimal.Sum(
		materials,
		hinge,
		paint,
		refinishing,
		measuring,
		install.total(),
		disposalCost,
		surcharge,
	)
	profit := overall.Sub(costToInstaller)

	echoCounts := counts
	echoCounts.TotalDoors = Count(counts.Doors())
	echoSetup := setup
	echoSetup.CalculateDisposal = flag

	b := Breakdown{
		OverallTotal:        money(overall),
		DoorCostTotal:       money(materials),
		CostToInstaller:     money(costToInstaller),
		ProfitMargin:        money(profit),
		HingeCost:           money(hinge),
		HingeCount:          HingeCount(counts),
		SpecialFeatures:     SpecialFeaturesCost{CustomPaintCost: money(paint)},
		RefinishingCost:     money(refinishing),
		MeasuringCost:       money(measuring),
		Installation:        install.result(),
		Disposal:            disposal,
		LazySusanSurcharge:  money(surcharge),
		TotalSqFt:           sqFt.Round(areaPlaces).InexactFloat64(),
		DisplayedTotalDoors: counts.Doors() + counts.LazySusanQty.Int()*lazySusanDisposalUnits,
		Sections:            sections,
		SkippedSections:     skipped,
		Part2:               echoCounts,
		PriceSetup:          echoSetup,
	}
	if !b.finite() {
		return Breakdown{}, fmt.Errorf("%w: amounts out of range", ErrMalformedRequest)
	}
	return b, nil
}

// finite reports whether every figure survived the conversion to float64.
func (b Breakdown) finite() bool {
	values := []float64{
		b.OverallTotal, b.DoorCostTotal, b.CostToInstaller, b.ProfitMargin,
		b.HingeCost, b.SpecialFeatures.CustomPaintCost, b.RefinishingCost,
		b.MeasuringCost, b.Installation.DoorInstall, b.Installation.DrawerInstall,
		b.Installation.LazySusanInstall, b.Installation.TotalInstall,
		b.Disposal.Cost, b.LazySusanSurcharge, b.TotalSqFt,
	}
	for _, s := range b.Sections {
		values = append(values, s.Area, s.DoorCost, s.DrawerCost, s.TotalSectionCost)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Area converts a height and width in inches to square feet, rounded to four
// places. Negative inputs count as 0.
func Area(height, width float64) float64 {
	return areaOf(height, width).Round(areaPlaces).InexactFloat64()
}

// PriceSection prices a single section against catalog.
func PriceSection(s Section, catalog *Catalog) SectionCost {
	return sectionAmountsFor(s, catalog).result(0, s)
}

// HingeCost is the hinge drilling charge for the bracketed door counts.
func HingeCost(counts PieceCounts, hingeCosts map[string]Number) float64 {
	return money(hingeCost(counts, hingeCosts))
}

// HingeCount is the weighted hinge tally reported for diagnostics: larger
// doors take more hinges. It does not feed into any cost.
func HingeCount(counts PieceCounts) int {
	return counts.Doors0To36.Int()*2 + counts.Doors36To60.Int()*3 + counts.Doors60To82.Int()*4
}

// CustomPaintCost is qty units at unitPrice each.
func CustomPaintCost(qty int, unitPrice float64) float64 {
	return money(customPaintCost(qty, unitPrice))
}

// DisposalCost computes the disposal charge for a validated request. When the
// flag is not "yes" every figure is 0.
func DisposalCost(req QuoteRequest) Disposal {
	if req.PieceCounts == nil || req.PriceSetup == nil {
		return Disposal{}
	}
	d, _ := disposalFor(*req.PieceCounts, req.PriceSetup.DoorDisposalCost.Float64(), req.DisposalFlag().Enabled())
	return d
}

// LazySusanSurcharge is the flat per-unit lazy-susan surcharge.
func LazySusanSurcharge(qty int) float64 {
	return money(lazySusanSurcharge(qty))
}

// InstallationCost is the labor charge for doors, drawers and lazy susans.
func InstallationCost(setup PriceSetup, counts PieceCounts) Installation {
	return installationAmounts(setup, counts).result()
}

type sectionAmounts struct {
	area   decimal.Decimal
	door   decimal.Decimal
	drawer decimal.Decimal
}

func (a sectionAmounts) total() decimal.Decimal { return a.door.Add(a.drawer) }

func (a sectionAmounts) result(index int, s Section) SectionCost {
	return SectionCost{
		Index:            index,
		DoorStyle:        s.DoorStyle,
		DrawerStyle:      s.DrawerStyle,
		Finish:           s.Finish,
		Area:             a.area.Round(areaPlaces).InexactFloat64(),
		DoorCost:         money(a.door),
		DrawerCost:       money(a.drawer),
		TotalSectionCost: money(a.total()),
	}
}

func sectionAmountsFor(s Section, catalog *Catalog) sectionAmounts {
	area := areaOf(s.Height.Float64(), s.Width.Float64())
	amounts := sectionAmounts{
		area:   area,
		door:   area.Mul(dec(catalog.PriceFor(s.DoorStyle, s.Finish))),
		drawer: decimal.Zero,
	}
	// One uniform style is charged once.
	if s.DrawerStyle != s.DoorStyle {
		if price := catalog.PriceFor(s.DrawerStyle, s.Finish); price != 0 {
			amounts.drawer = area.Mul(dec(price))
		}
	}
	return amounts
}

func areaOf(height, width float64) decimal.Decimal {
	h, w := dec(height), dec(width)
	if h.IsNegative() {
		h = decimal.Zero
	}
	if w.IsNegative() {
		w = decimal.Zero
	}
	return h.Mul(w).Div(decimal.NewFromInt(squareInchesPerSqFt))
}

func hingeCost(counts PieceCounts, hingeCosts map[string]Number) decimal.Decimal {
	return decimal.Sum(
		decimal.NewFromInt(int64(counts.Doors0To36)).Mul(dec(hingeCosts[BracketUpTo36].Float64())),
		decimal.NewFromInt(int64(counts.Doors36To60)).Mul(dec(hingeCosts[BracketUpTo60].Float64())),
		decimal.NewFromInt(int64(counts.Doors60To82)).Mul(dec(hingeCosts[BracketUpTo82].Float64())),
	)
}

func customPaintCost(qty int, unitPrice float64) decimal.Decimal {
	return decimal.NewFromInt(int64(qty)).Mul(dec(unitPrice))
}

func lazySusanSurcharge(qty int) decimal.Decimal {
	return decimal.NewFromInt(int64(qty) * lazySusanSurchargePerUnit)
}

func disposalFor(counts PieceCounts, costPerUnit float64, enabled bool) (Disposal, decimal.Decimal) {
	if !enabled {
		return Disposal{}, decimal.Zero
	}
	d := Disposal{
		DoorsForDisposal:      counts.Doors(),
		DrawersForDisposal:    counts.NumDrawers.Int(),
		LazySusansForDisposal: counts.LazySusanQty.Int(),
	}
	d.Units = d.DoorsForDisposal + d.DrawersForDisposal + d.LazySusansForDisposal*lazySusanDisposalUnits
	cost := decimal.NewFromInt(int64(d.Units)).Mul(dec(costPerUnit))
	d.Cost = money(cost)
	return d, cost
}

type installationParts struct {
	door      decimal.Decimal
	drawer    decimal.Decimal
	lazySusan decimal.Decimal
}

func (p installationParts) total() decimal.Decimal {
	return decimal.Sum(p.door, p.drawer, p.lazySusan)
}

func (p installationParts) result() Installation {
	return Installation{
		DoorInstall:      money(p.door),
		DrawerInstall:    money(p.drawer),
		LazySusanInstall: money(p.lazySusan),
		TotalInstall:     money(p.total()),
	}
}

func installationAmounts(setup PriceSetup, counts PieceCounts) installationParts {
	return installationParts{
		door:      decimal.NewFromInt(int64(counts.Doors())).Mul(dec(setup.PricePerDoor.Float64())),
		drawer:    decimal.NewFromInt(int64(counts.NumDrawers)).Mul(dec(setup.PricePerDrawer.Float64())),
		lazySusan: decimal.NewFromInt(int64(counts.LazySusanQty)).Mul(dec(setup.PricePerLazySusan.Float64())),
	}
}

// dec converts f to a decimal; non-finite values become 0.
func dec(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func money(d decimal.Decimal) float64 {
	return d.Round(moneyPlaces).InexactFloat64()
}
