package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Simplici0/refacing-estimator/internal/db"
	"github.com/Simplici0/refacing-estimator/internal/migrations"
	"github.com/Simplici0/refacing-estimator/internal/pricing"
)

const jsonCatalog = `{
	"doorPricing": {
		"Shaker": {"Painted": 50, "Primed": 42},
		"Slab": {"Painted": 40}
	},
	"hingeCosts": {"0-36": 2, "36.01-60": 3, "60.01-82": 4},
	"customPaint": {"price": 150},
	"priceSetupDefaults": {"pricePerDoor": 10, "doorDisposalCost": 5}
}`

const yamlCatalog = `
doorPricing:
  Shaker:
    Painted: 50
    Primed: 42
  Slab:
    Painted: 40
hingeCosts:
  "0-36": 2
  "36.01-60": 3
  "60.01-82": 4
customPaint:
  price: 150
priceSetupDefaults:
  pricePerDoor: 10
  doorDisposalCost: 5
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func assertSampleCatalog(t *testing.T, c *pricing.Catalog) {
	t.Helper()

	if got := c.PriceFor("Shaker", "Primed"); got != 42 {
		t.Fatalf("Shaker/Primed = %v, want 42", got)
	}
	if got := c.PriceFor("Slab", "Painted"); got != 40 {
		t.Fatalf("Slab/Painted = %v, want 40", got)
	}
	if got := c.HingeCost(pricing.BracketUpTo82); got != 4 {
		t.Fatalf("hinge 60.01-82 = %v, want 4", got)
	}
	if got := c.CustomPaintPrice(); got != 150 {
		t.Fatalf("custom paint = %v, want 150", got)
	}
	if got := c.PriceSetupDefaults.DoorDisposalCost.Float64(); got != 5 {
		t.Fatalf("doorDisposalCost default = %v, want 5", got)
	}
}

func TestLoadFile_JSONAndYAML(t *testing.T) {
	for name, content := range map[string]string{
		"pricing.json": jsonCatalog,
		"pricing.yaml": yamlCatalog,
		"pricing.yml":  yamlCatalog,
	} {
		c, err := LoadFile(writeFile(t, name, content))
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
		assertSampleCatalog(t, c)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := LoadFile(writeFile(t, "broken.json", `{"doorPricing": `)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}

func TestStore_ImportThenLoad(t *testing.T) {
	database, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	store := NewStore(database)

	empty, err := store.Load()
	if err != nil {
		t.Fatalf("load empty store: %v", err)
	}
	if !empty.IsEmpty() {
		t.Fatalf("fresh store should load an empty catalog")
	}

	source, err := Parse([]byte(jsonCatalog), ".json")
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	if err := store.Import(source); err != nil {
		t.Fatalf("import: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSampleCatalog(t, loaded)

	// A second import replaces rather than merges.
	if err := store.Import(&pricing.Catalog{DoorPricing: map[string]pricing.FinishPrices{"Glass": {"Painted": 75}}}); err != nil {
		t.Fatalf("second import: %v", err)
	}
	replaced, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if replaced.PriceFor("Shaker", "Painted") != 0 || replaced.PriceFor("Glass", "Painted") != 75 {
		t.Fatalf("import did not replace catalog: %+v", replaced.DoorPricing)
	}
}
