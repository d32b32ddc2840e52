package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
)

func resolveProfile(r *http.Request) string {
	v := strings.TrimSpace(r.URL.Query().Get("profile"))
	if v == "" {
		v = strings.TrimSpace(r.Form.Get("profile"))
	}
	if v == "" {
		return core.DefaultProfile().Name
	}
	return v
}

// handleAllocation renders the allocation preview partial. Viewing a
// plan never writes anything; persistence happens only through the
// explicit save endpoint.
func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	period := resolvePeriod(r)
	profileName := resolveProfile(r)

	plan, state, err := s.planner.Plan(r.Context(), period, profileName)
	if err != nil {
		if errors.Is(err, core.ErrUnknownProfile) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Unknown allocation profile</div>`))
			return
		}
		slog.ErrorContext(r.Context(), "Allocation plan error", "error", err, "period", period, "profile", profileName)
		_, _ = w.Write([]byte(`<section id="allocation" class="allocation"><div class="placeholder">Could not compute the allocation</div></section>`))
		return
	}

	type lineRow struct {
		Category, Percent, Amount string
	}
	data := struct {
		Period    string
		Profile   string
		Profiles  []string
		State     string
		NoIncome  bool
		NoSurplus bool
		Persisted bool
		Surplus   string
		Total     string
		Lines     []lineRow
	}{
		Period:    period.String(),
		Profile:   profileName,
		State:     string(state),
		NoIncome:  state == core.StateNoIncome,
		NoSurplus: state == core.StateNoSurplus,
	}
	for _, p := range core.Profiles() {
		data.Profiles = append(data.Profiles, p.Name)
	}

	if state == core.StatePlanReady {
		data.Surplus = plan.Surplus.FormatNaira()
		data.Total = plan.Total().FormatNaira()
		for _, line := range plan.Lines {
			data.Lines = append(data.Lines, lineRow{
				Category: string(line.Category),
				Percent:  strconv.Itoa(line.Percent) + "%",
				Amount:   line.Amount.FormatNaira(),
			})
		}

		// A plan already saved under this profile advances the lifecycle
		// to PERSISTED; re-saving just replaces those rows.
		saved, err := s.planner.SavedPlans(r.Context(), period)
		if err != nil {
			slog.ErrorContext(r.Context(), "Saved plans load error", "error", err, "period", period)
		}
		for _, rec := range saved {
			if strings.EqualFold(rec["profile"], profileName) {
				data.Persisted = true
				data.State = string(core.StatePersisted)
				break
			}
		}
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="allocation" class="allocation"><div class="placeholder">` + data.State + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "allocation.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "allocation.html", "period", period)
		_, _ = w.Write([]byte(`<section id="allocation" class="allocation"><div class="placeholder">Could not render the allocation</div></section>`))
	}
}

// handleSaveAllocation recomputes the plan from current data and
// persists it. Recomputing on save means a stale preview can never be
// written over fresher entries.
func (s *Server) handleSaveAllocation(w http.ResponseWriter, r *http.Request) {
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
	profileName := resolveProfile(r)

	plan, state, err := s.planner.Plan(r.Context(), period, profileName)
	if err != nil {
		if errors.Is(err, core.ErrUnknownProfile) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Unknown allocation profile</div>`))
			return
		}
		slog.ErrorContext(r.Context(), "Allocation plan error", "error", err, "period", period, "profile", profileName)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not compute the allocation</div>`))
		return
	}

	switch state {
	case core.StateNoIncome:
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">No income recorded for this period, nothing to allocate</div>`))
		return
	case core.StateNoSurplus:
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">No positive surplus for this period, nothing to allocate</div>`))
		return
	}

	if err := s.planner.Save(r.Context(), plan); err != nil {
		slog.ErrorContext(r.Context(), "Allocation save error", "error", err, "period", period, "profile", profileName)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not save the plan</div>`))
		return
	}

	w.Header().Set("HX-Trigger", `{"allocation:saved": {"period": "`+period.String()+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Plan saved: ` +
		template.HTMLEscapeString(profileName) +
		` for ` + template.HTMLEscapeString(period.String()) +
		`, ` + template.HTMLEscapeString(plan.Total().FormatNaira()) + ` allocated</div>`))
}
