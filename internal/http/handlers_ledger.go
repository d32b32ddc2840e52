package http

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/services"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	profiles := core.Profiles()
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}

	data := struct {
		Period     string
		Sources    []core.IncomeSource
		Categories []core.ExpenseCategory
		Profiles   []string
	}{
		Period:     core.PeriodOf(time.Now()).String(),
		Sources:    core.IncomeSources(),
		Categories: core.ExpenseCategories(),
		Profiles:   names,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	period := resolvePeriod(r)
	source, err := core.ParseIncomeSource(sanitizeInput(r.Form.Get("source")))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Unknown income source</div>`))
		return
	}

	amount := core.ParseAmount(r.Form.Get("amount"))
	notes := sanitizeInput(r.Form.Get("notes"))

	entry, err := core.NewIncomeEntry(period, source, amount, notes)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid entry: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	saved, err := s.ledger.AddIncome(r.Context(), entry)
	if err != nil {
		slog.ErrorContext(r.Context(), "Income append error", "error", err, "period", period, "source", source)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not save the entry</div>`))
		return
	}

	s.invalidatePeriod(period)
	w.Header().Set("HX-Trigger", `{"ledger:changed": {"period": "`+period.String()+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Income recorded: ` +
		template.HTMLEscapeString(string(saved.Source)) +
		` ` + template.HTMLEscapeString(saved.Amount.FormatNaira()) +
		` (` + template.HTMLEscapeString(string(saved.Type)) + `)</div>`))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	period := resolvePeriod(r)
	category, err := core.ParseExpenseCategory(sanitizeInput(r.Form.Get("category")))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Unknown expense category</div>`))
		return
	}

	amount := core.ParseAmount(r.Form.Get("amount"))
	desc := sanitizeInput(r.Form.Get("description"))

	entry, err := core.NewExpenseEntry(period, category, amount, desc)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid entry: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	saved, err := s.ledger.AddExpense(r.Context(), entry)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense append error", "error", err, "period", period, "category", category)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not save the entry</div>`))
		return
	}

	s.invalidatePeriod(period)
	w.Header().Set("HX-Trigger", `{"ledger:changed": {"period": "`+period.String()+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense recorded: ` +
		template.HTMLEscapeString(string(saved.Category)) +
		` ` + template.HTMLEscapeString(saved.Amount.FormatNaira()) + `</div>`))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.ledger.DeleteIncome)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.ledger.DeleteExpense)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id string) error) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	period := resolvePeriod(r)
	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Missing entry id</div>`))
		return
	}

	if err := del(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<div class="error">Entry no longer exists</div>`))
			return
		}
		slog.ErrorContext(r.Context(), "Delete entry error", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not delete the entry</div>`))
		return
	}

	s.invalidatePeriod(period)
	w.Header().Set("HX-Trigger", `{"ledger:changed": {"period": "`+period.String()+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Entry deleted</div>`))
}

func (s *Server) handleClearIncome(w http.ResponseWriter, r *http.Request) {
	s.handleClear(w, r, s.ledger.ClearIncome, "All income entries cleared")
}

func (s *Server) handleClearExpense(w http.ResponseWriter, r *http.Request) {
	s.handleClear(w, r, s.ledger.ClearExpense, "All expense entries cleared")
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request, clear func(ctx context.Context) error, msg string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	period := resolvePeriod(r)
	if err := clear(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear entries error", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not clear the entries</div>`))
		return
	}

	// A clear wipes rows for every period, so no single key covers it.
	s.ledgerCache.Purge()
	s.reviewCache.Purge()
	w.Header().Set("HX-Trigger", `{"ledger:changed": {"period": "`+period.String()+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`))
}

// handleLedger renders the per-period records tables partial.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	period := resolvePeriod(r)

	lv, err := s.getLedger(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger load error", "error", err, "period", period)
		_, _ = w.Write([]byte(`<section id="ledger" class="ledger"><div class="placeholder">Could not load the ledger</div></section>`))
		return
	}

	type incomeRow struct {
		ID, Source, Type, Amount, Notes string
	}
	type expenseRow struct {
		ID, Category, Amount, Description string
	}
	data := struct {
		Period     string
		Incomes    []incomeRow
		Expenses   []expenseRow
		HasEntries bool
	}{Period: period.String()}

	for _, e := range lv.Incomes {
		data.Incomes = append(data.Incomes, incomeRow{
			ID:     e.ID,
			Source: string(e.Source),
			Type:   string(e.Type),
			Amount: e.Amount.FormatNaira(),
			Notes:  e.Notes,
		})
	}
	for _, e := range lv.Expenses {
		data.Expenses = append(data.Expenses, expenseRow{
			ID:          e.ID,
			Category:    string(e.Category),
			Amount:      e.Amount.FormatNaira(),
			Description: e.Description,
		})
	}
	data.HasEntries = len(data.Incomes) > 0 || len(data.Expenses) > 0

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="ledger" class="ledger"><div class="placeholder">No entries yet for this period. Add income or expenses above.</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "ledger.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "ledger.html", "period", period)
		_, _ = w.Write([]byte(`<section id="ledger" class="ledger"><div class="placeholder">Could not render the ledger</div></section>`))
	}
}
