package http

import (
	"fmt"
	"net/http"

	"subtrack/internal/export"
	applog "subtrack/internal/log"
)

type usagePointJSON struct {
	Label string `json:"label"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Count int    `json:"count"`
}

type savingsPointJSON struct {
	Label     string `json:"label"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	AmountWon int64  `json:"amount_won"`
}

type nameAmountJSON struct {
	Name      string `json:"name"`
	AmountWon int64  `json:"amount_won"`
}

type summaryJSON struct {
	SubscriptionCount int   `json:"subscription_count"`
	TotalMonthlyFee   int64 `json:"total_monthly_fee_won"`
	TotalUsageCount   int   `json:"total_usage_count"`
	AvgCostPerUse     int64 `json:"avg_cost_per_use_won"`
	InvestmentCount   int   `json:"investment_count"`
}

type reportJSON struct {
	MonthlyUsage      []usagePointJSON   `json:"monthly_usage"`
	CostComparison    []nameAmountJSON   `json:"cost_comparison"`
	InvestmentSavings []savingsPointJSON `json:"investment_savings"`
	Summary           summaryJSON        `json:"summary"`
}

// handleStatsReport returns the six month report as JSON for the chart
// front-end.
func (s *Server) handleStatsReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	userID := userIDFrom(r)
	report, err := s.getReport(r.Context(), userID, s.today())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "stats report failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "report unavailable"})
		return
	}

	out := reportJSON{
		MonthlyUsage:      make([]usagePointJSON, 0, len(report.MonthlyUsage)),
		CostComparison:    make([]nameAmountJSON, 0, len(report.CostComparison)),
		InvestmentSavings: make([]savingsPointJSON, 0, len(report.InvestmentSavings)),
		Summary: summaryJSON{
			SubscriptionCount: report.Summary.SubscriptionCount,
			TotalMonthlyFee:   report.Summary.TotalMonthlyFee.Amount,
			TotalUsageCount:   report.Summary.TotalUsageCount,
			AvgCostPerUse:     report.Summary.AvgCostPerUse.Amount,
			InvestmentCount:   report.Summary.InvestmentCount,
		},
	}
	for _, p := range report.MonthlyUsage {
		out.MonthlyUsage = append(out.MonthlyUsage, usagePointJSON{
			Label: p.Label,
			Year:  p.Month.Year,
			Month: int(p.Month.Month),
			Count: p.Count,
		})
	}
	for _, c := range report.CostComparison {
		out.CostComparison = append(out.CostComparison, nameAmountJSON{
			Name:      c.Name,
			AmountWon: c.Amount.Amount,
		})
	}
	for _, p := range report.InvestmentSavings {
		out.InvestmentSavings = append(out.InvestmentSavings, savingsPointJSON{
			Label:     p.Label,
			Year:      p.Month.Year,
			Month:     int(p.Month.Month),
			AmountWon: p.Amount.Amount,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// handleStatsExport streams the report workbook as an XLSX download.
func (s *Server) handleStatsExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	userID := userIDFrom(r)
	today := s.today()

	report, err := s.getReport(r.Context(), userID, today)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	subs, err := s.subscriptions.List(r.Context(), userID, today)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	invs, err := s.investments.List(r.Context(), userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="subtrack-%s.xlsx"`, today.String()))

	if err := export.WriteReportXLSX(w, report, subs, invs, today); err != nil {
		// Headers are gone by now; log and drop the connection.
		s.logger.ErrorContext(r.Context(), "xlsx export failed",
			"error", err,
			applog.FieldComponent, applog.ComponentExport,
			applog.FieldOperation, applog.OpExport,
			applog.FieldUserID, userID)
		return
	}

	s.logger.InfoContext(r.Context(), "report exported",
		applog.FieldComponent, applog.ComponentExport,
		applog.FieldOperation, applog.OpExport,
		applog.FieldUserID, userID)
}
