// Package budget implements the order budget and profit-margin calculation.
// It is pure arithmetic over a draft: no I/O, no failure modes, safe to call
// on every form edit and re-run server-side before any write.
package budget

// Site carries the two cost components of one site selection.
type Site struct {
	SitePrice  float64 `json:"sitePrice"`
	ArticleFee float64 `json:"articleFee"`
}

// Draft is the client order input the calculation runs over. Values may be
// transiently invalid while the user is mid-edit; Calculate never rejects
// them, the caller decides whether submission is allowed.
type Draft struct {
	TotalBudget         float64 `json:"totalBudget"`
	ProfitMarginPercent float64 `json:"profitMargin"`
	Sites               []Site  `json:"sites"`
}

// Calculation is the derived cost/profit breakdown. IsWithinBudget is the
// single boolean gating submission.
type Calculation struct {
	TotalSiteCosts     float64 `json:"totalSiteCosts"`
	TotalArticleFees   float64 `json:"totalArticleFees"`
	TotalCosts         float64 `json:"totalCosts"`
	AvailableBudget    float64 `json:"availableBudget"`
	Profit             float64 `json:"profit"`
	ProfitMarginActual float64 `json:"actualProfitMargin"`
	IsWithinBudget     bool    `json:"isWithinBudget"`
}

// Calculate derives the full breakdown from a draft.
//
// AvailableBudget is the share of the client budget left for site and article
// costs after reserving the target margin. The within-budget check is
// non-strict: spending exactly the available budget is allowed. A zero total
// budget yields a zero actual margin rather than NaN.
func Calculate(d Draft) Calculation {
	var c Calculation

	for _, s := range d.Sites {
		c.TotalSiteCosts += s.SitePrice
		c.TotalArticleFees += s.ArticleFee
	}
	c.TotalCosts = c.TotalSiteCosts + c.TotalArticleFees

	c.AvailableBudget = d.TotalBudget * (1 - d.ProfitMarginPercent/100)
	c.Profit = d.TotalBudget - c.TotalCosts
	if d.TotalBudget != 0 {
		c.ProfitMarginActual = c.Profit / d.TotalBudget * 100
	}
	c.IsWithinBudget = c.TotalCosts <= c.AvailableBudget

	return c
}
