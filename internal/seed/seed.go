package seed

import (
	"database/sql"
	"fmt"

	"github.com/Simplici0/refacing-estimator/internal/catalog"
	"github.com/Simplici0/refacing-estimator/internal/pricing"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type stylePrices struct {
	style      string
	painted    float64
	primed     float64
	unfinished float64
}

// Price grid per square foot for the styles offered by the estimate form.
var defaultStyles = []stylePrices{
	{"Shaker", 50, 42, 35},
	{"Slab", 40, 34, 28},
	{"Chamfer", 52, 44, 36},
	{"Savannah", 55, 46, 38},
	{"Beaded", 58, 49, 40},
	{"Stepped", 56, 47, 39},
	{"Ruth", 54, 45, 37},
	{"Maisie", 54, 45, 37},
	{"Mavis", 57, 48, 40},
	{"Dorothy", 57, 48, 40},
	{"Raised Panel", 60, 51, 42},
	{"Split Shaker", 62, 52, 43},
	{"Jean", 53, 45, 37},
	{"Nora", 59, 50, 41},
	{"Amelia", 55, 46, 38},
	{"Millie", 55, 46, 38},
	{"Glass", 75, 64, 52},
	{"Frances", 56, 47, 39},
	{"Alice", 53, 45, 37},
	{"Mabel", 58, 49, 40},
	{"Bessie", 61, 52, 43},
	{"Winona", 63, 53, 44},
	{"Eleanor", 59, 50, 41},
	{"Georgia", 65, 55, 45},
}

// Finish names used by the default grid.
const (
	FinishPainted    = "Painted"
	FinishPrimed     = "Primed"
	FinishUnfinished = "Unfinished"
)

// DefaultCatalog returns the catalog inserted by Run.
func DefaultCatalog() *pricing.Catalog {
	c := &pricing.Catalog{
		DoorPricing: make(map[string]pricing.FinishPrices, len(defaultStyles)),
		HingeCosts: map[string]pricing.Number{
			pricing.BracketUpTo36: 2,
			pricing.BracketUpTo60: 3,
			pricing.BracketUpTo82: 4,
		},
		CustomPaint: pricing.FlatPrice{Price: 150},
		PriceSetupDefaults: pricing.PriceDefaults{
			PricePerDoor:           10,
			PricePerDrawer:         8,
			PricePerLazySusan:      40,
			RefinishingCostPerSqFt: 5,
			OnSiteMeasuring:        25,
			DoorDisposalCost:       5,
		},
	}
	for _, s := range defaultStyles {
		c.DoorPricing[s.style] = pricing.FinishPrices{
			FinishPainted:    pricing.Number(s.painted),
			FinishPrimed:     pricing.Number(s.primed),
			FinishUnfinished: pricing.Number(s.unfinished),
		}
	}
	return c
}

// Run inserts the default catalog rows that are missing. Existing rows are
// left untouched, so prices edited after the first run survive restarts.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	defaults := DefaultCatalog()

	if err := ensureDoorPricing(tx, defaults, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureHingeCosts(tx, defaults, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureFlatPrices(tx, defaults, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureDoorPricing(tx *sql.Tx, c *pricing.Catalog, stats *Stats) error {
	for _, s := range defaultStyles {
		for _, finish := range []string{FinishPainted, FinishPrimed, FinishUnfinished} {
			inserted, err := insertIfMissing(tx, `
				INSERT INTO door_pricing (style, finish, price_per_sqft)
				VALUES (?, ?, ?)
				ON CONFLICT(style, finish) DO NOTHING
			`, s.style, finish, c.PriceFor(s.style, finish))
			if err != nil {
				return fmt.Errorf("insert default door price %s/%s: %w", s.style, finish, err)
			}
			stats.Inserts += inserted
		}
	}
	return nil
}

func ensureHingeCosts(tx *sql.Tx, c *pricing.Catalog, stats *Stats) error {
	for _, bracket := range []string{pricing.BracketUpTo36, pricing.BracketUpTo60, pricing.BracketUpTo82} {
		inserted, err := insertIfMissing(tx, `
			INSERT INTO hinge_costs (bracket, cost)
			VALUES (?, ?)
			ON CONFLICT(bracket) DO NOTHING
		`, bracket, c.HingeCost(bracket))
		if err != nil {
			return fmt.Errorf("insert default hinge cost %s: %w", bracket, err)
		}
		stats.Inserts += inserted
	}
	return nil
}

func ensureFlatPrices(tx *sql.Tx, c *pricing.Catalog, stats *Stats) error {
	d := c.PriceSetupDefaults
	values := map[string]pricing.Number{
		catalog.FlatCustomPaint:            c.CustomPaint.Price,
		catalog.FlatPricePerDoor:           d.PricePerDoor,
		catalog.FlatPricePerDrawer:         d.PricePerDrawer,
		catalog.FlatPricePerLazySusan:      d.PricePerLazySusan,
		catalog.FlatRefinishingCostPerSqFt: d.RefinishingCostPerSqFt,
		catalog.FlatOnSiteMeasuring:        d.OnSiteMeasuring,
		catalog.FlatDoorDisposalCost:       d.DoorDisposalCost,
	}
	for _, name := range catalog.FlatNames() {
		inserted, err := insertIfMissing(tx, `
			INSERT INTO flat_prices (name, price)
			VALUES (?, ?)
			ON CONFLICT(name) DO NOTHING
		`, name, values[name].Float64())
		if err != nil {
			return fmt.Errorf("insert default flat price %s: %w", name, err)
		}
		stats.Inserts += inserted
	}
	return nil
}

func insertIfMissing(tx *sql.Tx, query string, args ...any) (int, error) {
	result, err := tx.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
