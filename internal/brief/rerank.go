package brief

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/fvs/internal/models"
)

// rerankVerdict is the JSON object the re-ranking model must return.
type rerankVerdict struct {
	ThemeSummary string       `json:"theme_summary"`
	Picks        []rerankPick `json:"picks"`
}

type rerankPick struct {
	Symbol     string `json:"symbol"`
	Conviction string `json:"conviction"`
	Rationale  string `json:"rationale"`
}

// buildRerankPrompt renders the fixed selection rubric plus the category's
// top-ranked candidates.
func buildRerankPrompt(category, regime string, candidates []*models.SetupSignal, pickCount int) string {
	var sb strings.Builder

	sb.WriteString("You are curating a daily trading brief. From the ranked candidates below, ")
	fmt.Fprintf(&sb, "select exactly %d picks for the %q theme.\n\n", pickCount, category)

	sb.WriteString("SELECTION RULES:\n")
	sb.WriteString("- Prioritize high-conviction setups (direction and purity both strong).\n")
	sb.WriteString("- Enforce sector diversity; avoid concentrating picks in one sector.\n")
	sb.WriteString("- On otherwise equal candidates, prefer larger, more liquid names.\n")
	sb.WriteString("- For equities, prefer candidates with a higher fundamental score.\n")
	if regime != "" {
		fmt.Fprintf(&sb, "- Current macro regime: %s. Weigh setups accordingly.\n", regime)
	}
	sb.WriteString("\nCANDIDATES (ranked by composite score, best first):\n")

	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s [%s]", i+1, c.Symbol, c.SetupType)
		if c.Sector != "" {
			fmt.Fprintf(&sb, " sector=%s", c.Sector)
		}
		fmt.Fprintf(&sb, " direction=%.0f purity=%.0f confidence=%.2f return1d=%.2f%% dollar_volume=%.0f rr=%.2f",
			orNeutral(c.AIDirection, neutralDirection),
			orNeutral(c.AIPurity, neutralPurity),
			orNeutral(c.AIConfidence, neutralConfidence),
			c.Return1D*100, c.DollarVolume, c.RiskReward)
		if c.FundamentalScore != nil {
			fmt.Fprintf(&sb, " fundamental=%.0f", *c.FundamentalScore)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nReturn JSON with exactly these fields:\n")
	sb.WriteString(`{"theme_summary": "one paragraph on the theme", "picks": [{"symbol": "...", "conviction": "high|medium|low", "rationale": "one sentence"}]}`)
	sb.WriteString("\n")

	return sb.String()
}

// parseRerankVerdict decodes the model's pick list and joins it back to the
// candidate data for trade levels. Picks naming unknown symbols are
// dropped; the list is truncated to pickCount.
func parseRerankVerdict(raw string, candidates []*models.SetupSignal, pickCount int) (string, []models.BriefPick, error) {
	text := stripFences(raw)

	var v rerankVerdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return "", nil, fmt.Errorf("failed to parse re-ranking verdict: %w", err)
	}

	bySymbol := make(map[string]*models.SetupSignal, len(candidates))
	for _, c := range candidates {
		if _, exists := bySymbol[c.Symbol]; !exists {
			bySymbol[c.Symbol] = c
		}
	}

	picks := make([]models.BriefPick, 0, pickCount)
	for _, p := range v.Picks {
		c, ok := bySymbol[strings.ToUpper(strings.TrimSpace(p.Symbol))]
		if !ok {
			continue
		}
		conviction := p.Conviction
		switch conviction {
		case "high", "medium", "low":
		default:
			conviction = "medium"
		}
		picks = append(picks, models.BriefPick{
			Symbol:     c.Symbol,
			SetupType:  c.SetupType,
			Sector:     c.Sector,
			Conviction: conviction,
			Rationale:  p.Rationale,
			Entry:      c.Entry,
			Stop:       c.Stop,
			Target:     c.Target,
			RiskReward: c.RiskReward,
		})
		if len(picks) == pickCount {
			break
		}
	}

	return v.ThemeSummary, picks, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
