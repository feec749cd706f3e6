// Package invoice renders a priced quote as a printable plain-text estimate.
package invoice

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Simplici0/refacing-estimator/internal/pricing"
)

// Options tweak what the invoice shows.
type Options struct {
	Date time.Time
	// InternalDetails adds installer cost, profit margin and unit counts.
	InternalDetails bool
}

// USD formats an amount as dollars with thousands separators, e.g. $1,234.50.
func USD(amount float64) string {
	if amount < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -amount)
	}
	return "$" + humanize.FormatFloat("#,###.##", amount)
}

// Render writes the estimate for b to w.
func Render(w io.Writer, b pricing.Breakdown, opts Options) error {
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := &printer{w: tw}

	p.line("Project Estimate")
	p.line("Date: %s", opts.Date.Format("January 2, 2006"))
	p.rule()
	p.line("Summary of Charges")
	p.row("Door & Drawer Fronts (All Sections)", USD(b.DoorCostTotal))
	p.row("Hinge & Hardware Charge", USD(b.HingeCost))
	if b.SpecialFeatures.CustomPaintCost > 0 {
		p.row("Custom Paint", USD(b.SpecialFeatures.CustomPaintCost))
	}
	p.row(fmt.Sprintf("Refinishing (%.2f sq ft)", b.TotalSqFt), USD(b.RefinishingCost))
	p.row("On-Site Measuring", USD(b.MeasuringCost))
	p.row("Installation (Doors, Drawers, Lazy Susans)", USD(b.Installation.TotalInstall))
	if b.Disposal.Cost > 0 {
		p.row("Disposal Fee", USD(b.Disposal.Cost))
	}
	if b.LazySusanSurcharge > 0 {
		p.row("Lazy Susan Surcharge", USD(b.LazySusanSurcharge))
	}
	p.rule()
	p.row("Estimated Project Total", USD(b.OverallTotal))

	if len(b.Sections) > 0 {
		p.rule()
		p.line("Sections")
		for _, s := range b.Sections {
			p.row(fmt.Sprintf("Section %d: %s / %s, %s (%.4f sq ft)", s.Index+1, s.DoorStyle, s.DrawerStyle, s.Finish, s.Area), USD(s.TotalSectionCost))
		}
	}

	if opts.InternalDetails {
		p.rule()
		p.line("Internal Cost Breakdown")
		p.row("Total Doors Installed (incl. Lazy Susan pairs):", fmt.Sprint(b.DisplayedTotalDoors))
		p.row("Total Drawers Installed:", fmt.Sprint(b.Part2.NumDrawers))
		p.row("Actual Doors (for Install Cost):", fmt.Sprint(b.Part2.TotalDoors))
		p.row("Number of Lazy Susans:", fmt.Sprint(b.Part2.LazySusanQty))
		p.row("Hinge Count:", fmt.Sprint(b.HingeCount))
		p.row("Installation - Doors:", USD(b.Installation.DoorInstall))
		p.row("Installation - Drawers:", USD(b.Installation.DrawerInstall))
		p.row("Installation - Lazy Susans:", USD(b.Installation.LazySusanInstall))
		p.row("Cost To Installer (Materials + Hinge Drilling):", USD(b.CostToInstaller))
		p.row("Profit Margin:", USD(b.ProfitMargin))
		if b.PriceSetup.CalculateDisposal.Enabled() {
			p.line("Disposal Details:")
			p.row("  Doors for Disposal:", fmt.Sprint(b.DoorsForDisposal))
			p.row("  Drawers for Disposal:", fmt.Sprint(b.DrawersForDisposal))
			p.row("  Lazy Susans for Disposal:", fmt.Sprint(b.LazySusansForDisposal))
			p.row("  Calculated Disposal Cost:", USD(b.Disposal.Cost))
		} else {
			p.line("Disposal Cost Not Included")
		}
	}

	p.rule()
	p.line("This estimate is valid for 30 days.")

	if p.err != nil {
		return fmt.Errorf("write invoice: %w", p.err)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush invoice: %w", err)
	}
	return nil
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) row(label, value string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s\t%s\n", label, value)
}

func (p *printer) rule() {
	p.line("%s", strings.Repeat("-", 48))
}
