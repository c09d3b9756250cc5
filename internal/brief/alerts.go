package brief

import (
	"fmt"

	"github.com/bobmcallan/fvs/internal/models"
)

// generateAlerts cross-references the brief date's signals against held
// positions and sectors. A signal on a held symbol is an add-on opportunity;
// a signal on a held sector from a different symbol flags concentration.
// The list is truncated to maxPortfolioAlerts.
func generateAlerts(signals []models.SetupSignal, positions []models.Position) []models.PortfolioAlert {
	if len(signals) == 0 || len(positions) == 0 {
		return nil
	}

	heldSymbols := make(map[string]bool, len(positions))
	heldSectors := make(map[string]bool, len(positions))
	for _, p := range positions {
		heldSymbols[p.Symbol] = true
		if p.Sector != "" {
			heldSectors[p.Sector] = true
		}
	}

	var alerts []models.PortfolioAlert
	seen := make(map[string]bool)

	for _, s := range signals {
		if len(alerts) >= maxPortfolioAlerts {
			break
		}
		if seen[s.Symbol] {
			continue
		}
		seen[s.Symbol] = true

		switch {
		case heldSymbols[s.Symbol]:
			alerts = append(alerts, models.PortfolioAlert{
				Type:    "add_on_opportunity",
				Symbol:  s.Symbol,
				Sector:  s.Sector,
				Message: fmt.Sprintf("New %s signal on held position %s", s.SetupType, s.Symbol),
			})
		case s.Sector != "" && heldSectors[s.Sector]:
			alerts = append(alerts, models.PortfolioAlert{
				Type:    "sector_concentration",
				Symbol:  s.Symbol,
				Sector:  s.Sector,
				Message: fmt.Sprintf("Signal on %s adds exposure to already-held sector %s", s.Symbol, s.Sector),
			})
		}
	}

	return alerts
}
