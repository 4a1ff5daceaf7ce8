package services

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/epeers/whattheyhold/internal/country"
	"github.com/epeers/whattheyhold/internal/models"
	"github.com/epeers/whattheyhold/internal/upstream"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var hundred = decimal.NewFromInt(100)

// NormalizeTicker canonicalises a ticker for every cache tier
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// NormalizeHoldings converts raw provider holdings to percentages.
//
// Fraction-scale weights are multiplied by 100 first. Then, if the largest weight
// of the whole set is above 100, every weight is divided by 100. The correction is
// decided once from the observed maximum and never per item:
//
//	[0.45, 0.30, 0.25] (fraction) -> [45, 30, 25]
//	[4500, 3000, 2500] (percent)  -> [45, 30, 25]
//
// Rows with neither a symbol nor a name, and rows with a negative weight, are
// dropped. The second return value
// reports whether the divide-by-100 correction was applied.
func NormalizeHoldings(raw []upstream.RawHolding, scale upstream.WeightScale) ([]models.Holding, bool) {
	weights := make([]decimal.Decimal, 0, len(raw))
	kept := make([]upstream.RawHolding, 0, len(raw))
	for _, h := range raw {
		if strings.TrimSpace(h.Symbol) == "" && strings.TrimSpace(h.Name) == "" {
			continue
		}
		w := toPercent(h.Weight, scale)
		if w.IsNegative() {
			log.Debugf("dropping holding %q with negative weight %v", h.Symbol, h.Weight)
			continue
		}
		kept = append(kept, h)
		weights = append(weights, w)
	}

	rescaled := rescaleOverflow(weights)

	holdings := make([]models.Holding, len(kept))
	for i, h := range kept {
		holdings[i] = models.Holding{
			Ticker: strings.TrimSpace(h.Symbol),
			Name:   strings.TrimSpace(h.Name),
			Pct:    weights[i].InexactFloat64(),
		}
	}
	return holdings, rescaled
}

// NormalizeSectors applies the same scale and negative-weight rules as NormalizeHoldings to sector weights
func NormalizeSectors(raw []upstream.RawSectorWeight, scale upstream.WeightScale) []models.SectorWeight {
	weights := make([]decimal.Decimal, 0, len(raw))
	kept := make([]upstream.RawSectorWeight, 0, len(raw))
	for _, s := range raw {
		w := toPercent(s.Weight, scale)
		if w.IsNegative() {
			continue
		}
		kept = append(kept, s)
		weights = append(weights, w)
	}
	rescaleOverflow(weights)

	sectors := make([]models.SectorWeight, len(kept))
	for i, s := range kept {
		sectors[i] = models.SectorWeight{
			Sector:    s.Sector,
			WeightPct: weights[i].InexactFloat64(),
		}
	}
	return sectors
}

// BuildCountryWeights sums holding percentages per country code, in order of first appearance
func BuildCountryWeights(holdings []models.Holding) []models.CountryWeight {
	sums := make(map[string]decimal.Decimal)
	var order []string

	for _, h := range holdings {
		code := country.Classify(h.Ticker)
		if _, seen := sums[code]; !seen {
			order = append(order, code)
		}
		sums[code] = sums[code].Add(decimal.NewFromFloat(h.Pct))
	}

	weights := make([]models.CountryWeight, len(order))
	for i, code := range order {
		weights[i] = models.CountryWeight{
			CountryCode: code,
			WeightPct:   sums[code].InexactFloat64(),
		}
	}
	return weights
}

// NormalizeCurrency validates an ISO 4217 code. Empty or unknown codes become USD,
// lowercase codes are uppercased and minor-unit quotes such as "GBp" are kept as reported.
func NormalizeCurrency(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.DefaultCurrency
	}

	upper := strings.ToUpper(code)
	if money.GetCurrency(upper) == nil {
		log.Debugf("unknown currency %q, using %s", code, models.DefaultCurrency)
		return models.DefaultCurrency
	}
	if code == strings.ToLower(code) {
		return upper
	}
	return code
}

func toPercent(w float64, scale upstream.WeightScale) decimal.Decimal {
	d := decimal.NewFromFloat(w)
	if scale == upstream.ScaleFraction {
		return d.Mul(hundred)
	}
	return d
}

// rescaleOverflow divides every weight by 100 in place when the maximum exceeds 100
func rescaleOverflow(weights []decimal.Decimal) bool {
	if len(weights) == 0 {
		return false
	}
	maxWeight := decimal.Max(weights[0], weights[1:]...)
	if !maxWeight.GreaterThan(hundred) {
		return false
	}
	for i := range weights {
		weights[i] = weights[i].Div(hundred)
	}
	return true
}
