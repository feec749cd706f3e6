package catalog

import (
	"database/sql"
	"fmt"

	"github.com/Simplici0/refacing-estimator/internal/pricing"
)

// Names of the rows in flat_prices.
const (
	FlatCustomPaint            = "custom_paint"
	FlatPricePerDoor           = "price_per_door"
	FlatPricePerDrawer         = "price_per_drawer"
	FlatPricePerLazySusan      = "price_per_lazy_susan"
	FlatRefinishingCostPerSqFt = "refinishing_cost_per_sqft"
	FlatOnSiteMeasuring        = "on_site_measuring"
	FlatDoorDisposalCost       = "door_disposal_cost"
)

// Store reads and writes the catalog tables.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store over db. The tables must already be migrated.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load builds a catalog from the database. Empty tables yield an empty
// catalog, not an error.
func (s *Store) Load() (*pricing.Catalog, error) {
	c := &pricing.Catalog{
		DoorPricing: map[string]pricing.FinishPrices{},
		HingeCosts:  map[string]pricing.Number{},
	}

	rows, err := s.db.Query(`SELECT style, finish, price_per_sqft FROM door_pricing ORDER BY style, finish`)
	if err != nil {
		return nil, fmt.Errorf("query door pricing: %w", err)
	}
	for rows.Next() {
		var style, finish string
		var price float64
		if err := rows.Scan(&style, &finish, &price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan door pricing: %w", err)
		}
		if c.DoorPricing[style] == nil {
			c.DoorPricing[style] = pricing.FinishPrices{}
		}
		c.DoorPricing[style][finish] = pricing.Number(price)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate door pricing: %w", err)
	}
	rows.Close()

	hinges, err := s.db.Query(`SELECT bracket, cost FROM hinge_costs`)
	if err != nil {
		return nil, fmt.Errorf("query hinge costs: %w", err)
	}
	for hinges.Next() {
		var bracket string
		var cost float64
		if err := hinges.Scan(&bracket, &cost); err != nil {
			hinges.Close()
			return nil, fmt.Errorf("scan hinge cost: %w", err)
		}
		c.HingeCosts[bracket] = pricing.Number(cost)
	}
	if err := hinges.Err(); err != nil {
		hinges.Close()
		return nil, fmt.Errorf("iterate hinge costs: %w", err)
	}
	hinges.Close()

	flats, err := s.db.Query(`SELECT name, price FROM flat_prices`)
	if err != nil {
		return nil, fmt.Errorf("query flat prices: %w", err)
	}
	defer flats.Close()
	for flats.Next() {
		var name string
		var price float64
		if err := flats.Scan(&name, &price); err != nil {
			return nil, fmt.Errorf("scan flat price: %w", err)
		}
		if field := flatField(c, name); field != nil {
			*field = pricing.Number(price)
		}
	}
	if err := flats.Err(); err != nil {
		return nil, fmt.Errorf("iterate flat prices: %w", err)
	}

	return c, nil
}

// Import replaces the stored catalog with c in a single transaction.
func (s *Store) Import(c *pricing.Catalog) error {
	if c == nil {
		return fmt.Errorf("import catalog: nil catalog")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin catalog import: %w", err)
	}

	if err := replaceCatalog(tx, c); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog import: %w", err)
	}
	return nil
}

func replaceCatalog(tx *sql.Tx, c *pricing.Catalog) error {
	for _, table := range []string{"door_pricing", "hinge_costs", "flat_prices"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for style, finishes := range c.DoorPricing {
		for finish, price := range finishes {
			if _, err := tx.Exec(`
				INSERT INTO door_pricing (style, finish, price_per_sqft)
				VALUES (?, ?, ?)
			`, style, finish, price.Float64()); err != nil {
				return fmt.Errorf("insert door price %s/%s: %w", style, finish, err)
			}
		}
	}

	for bracket, cost := range c.HingeCosts {
		if _, err := tx.Exec(`INSERT INTO hinge_costs (bracket, cost) VALUES (?, ?)`, bracket, cost.Float64()); err != nil {
			return fmt.Errorf("insert hinge cost %s: %w", bracket, err)
		}
	}

	for _, name := range FlatNames() {
		if _, err := tx.Exec(`INSERT INTO flat_prices (name, price) VALUES (?, ?)`, name, flatField(c, name).Float64()); err != nil {
			return fmt.Errorf("insert flat price %s: %w", name, err)
		}
	}
	return nil
}

// FlatNames lists every flat_prices row the catalog knows about.
func FlatNames() []string {
	return []string{
		FlatCustomPaint,
		FlatPricePerDoor,
		FlatPricePerDrawer,
		FlatPricePerLazySusan,
		FlatRefinishingCostPerSqFt,
		FlatOnSiteMeasuring,
		FlatDoorDisposalCost,
	}
}

func flatField(c *pricing.Catalog, name string) *pricing.Number {
	d := &c.PriceSetupDefaults
	switch name {
	case FlatCustomPaint:
		return &c.CustomPaint.Price
	case FlatPricePerDoor:
		return &d.PricePerDoor
	case FlatPricePerDrawer:
		return &d.PricePerDrawer
	case FlatPricePerLazySusan:
		return &d.PricePerLazySusan
	case FlatRefinishingCostPerSqFt:
		return &d.RefinishingCostPerSqFt
	case FlatOnSiteMeasuring:
		return &d.OnSiteMeasuring
	case FlatDoorDisposalCost:
		return &d.DoorDisposalCost
	}
	return nil
}
