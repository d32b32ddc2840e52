package http

import (
	"log/slog"
	"net/http"
	"strconv"
)

// handleReview renders the metrics and insight panel partial.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	period := resolvePeriod(r)

	rv, err := s.getReview(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Review load error", "error", err, "period", period)
		_, _ = w.Write([]byte(`<section id="review" class="review"><div class="placeholder">Could not load the review</div></section>`))
		return
	}

	sum := rv.Summary

	// Widest category drives the bar scaling, same trick as the ledger
	// uses for visual weight.
	var maxKobo int64
	for _, cs := range sum.ByCategory {
		if cs.Amount.Kobo > maxKobo {
			maxKobo = cs.Amount.Kobo
		}
	}

	type catRow struct {
		Category, Amount, Percent string
		Width                     int
	}
	type driverRow struct {
		Category, Amount, Percent string
	}
	data := struct {
		Period        string
		TotalIncome   string
		TotalExpense  string
		NetSurplus    string
		Deficit       bool
		SavingsRate   string
		ActiveIncome  string
		PassiveIncome string
		ActivePct     string
		PassivePct    string
		Categories    []catRow
		Savings       string
		SavingsMsg    string
		Structure     string
		StructureMsg  string
		Drivers       []driverRow
	}{
		Period:        period.String(),
		TotalIncome:   sum.TotalIncome.FormatNaira(),
		TotalExpense:  sum.TotalExpense.FormatNaira(),
		NetSurplus:    sum.NetSurplus.FormatNaira(),
		Deficit:       sum.NetSurplus.Kobo < 0,
		SavingsRate:   strconv.FormatFloat(sum.SavingsRate, 'f', 1, 64) + "%",
		ActiveIncome:  sum.ActiveIncome.FormatNaira(),
		PassiveIncome: sum.PassiveIncome.FormatNaira(),
		ActivePct:     strconv.FormatFloat(sum.ActivePct, 'f', 1, 64) + "%",
		PassivePct:    strconv.FormatFloat(sum.PassivePct, 'f', 1, 64) + "%",
		Savings:       string(rv.Insights.Savings),
		SavingsMsg:    rv.Insights.SavingsMessage,
		Structure:     string(rv.Insights.Structure),
		StructureMsg:  rv.Insights.StructureMessage,
	}

	for _, cs := range sum.ByCategory {
		width := 0
		if maxKobo > 0 && cs.Amount.Kobo > 0 {
			width = int((cs.Amount.Kobo*100 + maxKobo/2) / maxKobo)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Categories = append(data.Categories, catRow{
			Category: string(cs.Category),
			Amount:   cs.Amount.FormatNaira(),
			Percent:  cs.PercentLabel(),
			Width:    width,
		})
	}
	for _, d := range rv.Insights.Drivers {
		data.Drivers = append(data.Drivers, driverRow{
			Category: string(d.Category),
			Amount:   d.Amount.FormatNaira(),
			Percent:  d.PercentLabel(),
		})
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="review" class="review"><div class="placeholder">Net surplus: ` + data.NetSurplus + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "review.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "review.html", "period", period)
		_, _ = w.Write([]byte(`<section id="review" class="review"><div class="placeholder">Could not render the review</div></section>`))
	}
}
