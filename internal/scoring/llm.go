package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/fvs/internal/models"
)

// Pillar weights for the final qualitative score.
const (
	weightProfitability = 0.35
	weightSolvency      = 0.25
	weightGrowth        = 0.20
	weightQuality       = 0.20
)

// Hard rubric constraints. These are enforced post-hoc regardless of what
// the model returns: the model is told about them, but never trusted to
// have applied them.
const (
	altmanDistressThreshold = 1.8
	solvencyCapDistressed   = 50.0
	piotroskiWeakThreshold  = 3
	qualityCapWeak          = 60.0
)

var verdictValidator = validator.New()

// llmVerdict is the JSON object the model must return.
type llmVerdict struct {
	Profitability    float64  `json:"profitability" validate:"gte=0,lte=100"`
	Solvency         float64  `json:"solvency" validate:"gte=0,lte=100"`
	Growth           float64  `json:"growth" validate:"gte=0,lte=100"`
	Quality          float64  `json:"quality" validate:"gte=0,lte=100"`
	ConfidenceLevel  string   `json:"confidence_level" validate:"omitempty,oneof=low medium high"`
	DataQualityScore float64  `json:"data_quality_score" validate:"gte=0,lte=100"`
	Reasoning        string   `json:"reasoning"`
	Strengths        []string `json:"strengths"`
	Risks            []string `json:"risks"`
}

// BuildScoringPrompt renders the fixed four-pillar rubric plus the asset's
// derived metrics as a context packet. Percentages are pre-multiplied so
// the model never has to interpret fractions.
func BuildScoringPrompt(symbol, sector string, class models.Classification, m *models.QuantitativeMetrics) string {
	var sb strings.Builder

	sb.WriteString("You are a fundamental analyst scoring a public company. ")
	sb.WriteString("Score four pillars from 0 to 100 using the rubric below, then return ONLY a JSON object.\n\n")

	sb.WriteString("PILLARS AND WEIGHTS:\n")
	sb.WriteString("- profitability (35%): margins, returns on capital, efficiency. 80-100 exceptional (ROIC>20%, gross margin>50%), 60-79 solid, 40-59 average, 20-39 weak, 0-19 loss-making.\n")
	sb.WriteString("- solvency (25%): balance-sheet strength and liquidity. 80-100 fortress (Altman Z>3, D/E<0.5), 60-79 sound, 40-59 adequate, 20-39 stretched, 0-19 distressed.\n")
	sb.WriteString("- growth (20%): multi-year revenue/EBITDA/FCF trajectory and acceleration. 80-100 rapid compounder (CAGR>20%), 60-79 healthy, 40-59 modest, 20-39 stagnant, 0-19 shrinking.\n")
	sb.WriteString("- quality (20%): earnings quality, accruals, Piotroski signals. 80-100 pristine (F-Score 8-9, FCF>net income), 60-79 good, 40-59 mixed, 20-39 poor, 0-19 red flags.\n\n")

	sb.WriteString("HARD CONSTRAINTS (apply even if the narrative suggests higher):\n")
	sb.WriteString(fmt.Sprintf("- If Altman Z-Score < %.1f, solvency must not exceed %.0f.\n", altmanDistressThreshold, solvencyCapDistressed))
	sb.WriteString(fmt.Sprintf("- If Piotroski F-Score <= %d, quality must not exceed %.0f.\n\n", piotroskiWeakThreshold, qualityCapWeak))

	sb.WriteString(fmt.Sprintf("COMPANY: %s", symbol))
	if sector != "" {
		sb.WriteString(fmt.Sprintf(" (sector: %s)", sector))
	}
	sb.WriteString(fmt.Sprintf("\nCLASSIFICATION: %s\n\nMETRICS:\n", class))

	writeMetric(&sb, "ROIC", m.ROIC, asPercent)
	writeMetric(&sb, "Gross margin", m.GrossMargin, asPercent)
	writeMetric(&sb, "Operating margin", m.OperatingMargin, asPercent)
	writeMetric(&sb, "Net margin", m.NetMargin, asPercent)
	writeMetric(&sb, "ROE", m.ROE, asPercent)
	writeMetric(&sb, "ROA", m.ROA, asPercent)
	writeMetric(&sb, "Current ratio", m.CurrentRatio, asRatio)
	writeMetric(&sb, "Quick ratio", m.QuickRatio, asRatio)
	writeMetric(&sb, "Debt/equity", m.DebtToEquity, asRatio)
	writeMetric(&sb, "Altman Z-Score", m.AltmanZScore, asRatio)
	writeMetric(&sb, "Interest coverage", m.InterestCoverage, asRatio)
	writeMetric(&sb, "Revenue CAGR (3y)", m.RevenueCAGR3Y, asPercent)
	writeMetric(&sb, "EBITDA CAGR (3y)", m.EBITDACAGR3Y, asPercent)
	writeMetric(&sb, "FCF CAGR (3y)", m.FCFCAGR3Y, asPercent)
	writeMetric(&sb, "Revenue growth YoY", m.RevenueGrowthYoY, asPercent)
	writeMetric(&sb, "Revenue acceleration", m.RevenueAcceleration, asPercent)
	writeMetric(&sb, "Rule of 40", m.RuleOf40, asPoints)
	writeMetric(&sb, "Accrual ratio", m.AccrualRatio, asPercent)
	writeMetric(&sb, "FCF / net income", m.FCFToNetIncome, asRatio)
	writeMetric(&sb, "P/E", m.PE, asRatio)
	writeMetric(&sb, "PEG", m.PEG, asRatio)
	writeMetric(&sb, "FCF yield", m.FCFYield, asPercent)
	writeMetric(&sb, "Dividend yield", m.DividendYield, asPercent)

	if m.Piotroski != nil {
		sb.WriteString(fmt.Sprintf("- Piotroski F-Score: %d/9\n", m.Piotroski.Score))
	} else {
		sb.WriteString("- Piotroski F-Score: n/a\n")
	}

	sb.WriteString("\nReturn JSON with exactly these fields:\n")
	sb.WriteString(`{"profitability": 0-100, "solvency": 0-100, "growth": 0-100, "quality": 0-100, "confidence_level": "low|medium|high", "data_quality_score": 0-100, "reasoning": "one paragraph", "strengths": ["..."], "risks": ["..."]}`)
	sb.WriteString("\n")

	return sb.String()
}

type metricFormat int

const (
	asPercent metricFormat = iota
	asRatio
	asPoints
)

func writeMetric(sb *strings.Builder, label string, v *float64, f metricFormat) {
	if v == nil {
		fmt.Fprintf(sb, "- %s: n/a\n", label)
		return
	}
	switch f {
	case asPercent:
		fmt.Fprintf(sb, "- %s: %.1f%%\n", label, *v*100)
	case asPoints:
		fmt.Fprintf(sb, "- %s: %.1f\n", label, *v)
	default:
		fmt.Fprintf(sb, "- %s: %.2f\n", label, *v)
	}
}

// ParseVerdict decodes, validates, and constraint-clamps a raw model
// response. Markdown fences are stripped first. Sub-scores are clamped to
// [0,100] and the hard rubric caps are re-applied from the actual metrics.
func ParseVerdict(raw string, m *models.QuantitativeMetrics) (*models.PillarScores, float64, *llmVerdict, error) {
	text := stripFences(raw)

	var v llmVerdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, 0, nil, fmt.Errorf("failed to parse LLM verdict: %w", err)
	}
	if err := verdictValidator.Struct(&v); err != nil {
		// Out-of-range values are clamped rather than rejected; the model's
		// narrative output is still usable.
		v.Profitability = clamp(v.Profitability, 0, 100)
		v.Solvency = clamp(v.Solvency, 0, 100)
		v.Growth = clamp(v.Growth, 0, 100)
		v.Quality = clamp(v.Quality, 0, 100)
		v.DataQualityScore = clamp(v.DataQualityScore, 0, 100)
	}

	pillars := &models.PillarScores{
		Profitability: clamp(v.Profitability, 0, 100),
		Solvency:      clamp(v.Solvency, 0, 100),
		Growth:        clamp(v.Growth, 0, 100),
		Quality:       clamp(v.Quality, 0, 100),
	}

	// Constraint re-validation: never trust the model to have applied the caps.
	if m.AltmanZScore != nil && *m.AltmanZScore < altmanDistressThreshold && pillars.Solvency > solvencyCapDistressed {
		pillars.Solvency = solvencyCapDistressed
	}
	if m.Piotroski != nil && m.Piotroski.Score <= piotroskiWeakThreshold && pillars.Quality > qualityCapWeak {
		pillars.Quality = qualityCapWeak
	}

	final := pillars.Profitability*weightProfitability +
		pillars.Solvency*weightSolvency +
		pillars.Growth*weightGrowth +
		pillars.Quality*weightQuality

	return pillars, final, &v, nil
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
