package http

import (
	"bytes"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/report"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}).Write(w)
}

// handleReady reports whether templates loaded, plus cache and limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	stats := s.overviewCache.Stats()
	checks["cache"] = map[string]any{
		"overview_entries": stats.Entries,
		"hits":             stats.Hits,
		"misses":           stats.Misses,
		"status":           "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}
	checks["ledger"] = map[string]any{
		"expenses": len(s.tracker.Ledger().Expenses()),
		"budgets":  len(s.tracker.Ledger().Budgets()),
	}

	NewHTMXResponse().Status(httpStatus).BodyJSON(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	securityMetrics := s.detector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.tracer.GetMetrics()
	cacheStats := s.overviewCache.Stats()

	var b bytes.Buffer
	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("expenses_total", "counter", "Total number of expenses created", atomic.LoadInt64(&s.expensesCreated))
	metric("budgets_set_total", "counter", "Total number of budgets set", atomic.LoadInt64(&s.budgetsSet))
	metric("cache_hits_total", "counter", "Total overview cache hits", cacheStats.Hits)
	metric("cache_misses_total", "counter", "Total overview cache misses", cacheStats.Misses)
	metric("cache_entries", "gauge", "Current overview cache entries", cacheStats.Entries)
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.startedAt).Seconds()))

	NewHTMXResponse().
		Header("Content-Type", "text/plain; charset=utf-8").
		BodyString(b.String()).
		Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	data := struct {
		Categories []string
		Today      string
	}{
		Categories: s.tracker.Categories(),
		Today:      core.DateOf(s.now()).String(),
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpRender,
			"template", "index.html")
		InternalServerError("Error rendering page").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

type categoryRow struct {
	Name   string
	Amount string
	Width  int
}

type expenseRow struct {
	Date        string
	Category    string
	Description string
	Amount      string
}

type budgetRow struct {
	Category  string
	Limit     string
	Spent     string
	Remaining string
	Over      bool
}

type overviewData struct {
	Label      string
	Year       int
	Month      int
	Total      string
	ThisMonth  string
	Categories []categoryRow
	Expenses   []expenseRow
	Budgets    []budgetRow
}

// handleOverview renders the totals partial. year and month select the month
// shown as "This Month"; they default to the current one.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	params := ParseMonthParams(r.URL.Query(), now)
	ov := s.getOverview(r.Context(), params.Year, params.Month)
	l := s.tracker.Ledger()

	data := overviewData{
		Label:      monthLabel(params.Year, params.Month),
		Year:       params.Year,
		Month:      params.Month,
		Total:      formatDollars(l.TotalExpenses()),
		ThisMonth:  formatDollars(ov.Total),
		Categories: categoryRows(ov.ByCategory),
	}
	for _, e := range report.NewestFirst(l.Expenses()) {
		data.Expenses = append(data.Expenses, expenseRow{
			Date:        e.Date().String(),
			Category:    e.Category(),
			Description: e.Description(),
			Amount:      formatDollars(e.Amount()),
		})
	}
	for _, b := range l.Budgets() {
		data.Budgets = append(data.Budgets, budgetRow{
			Category:  b.Category(),
			Limit:     formatDollars(b.Limit()),
			Spent:     formatDollars(b.Spent()),
			Remaining: formatDollars(b.Remaining()),
			Over:      b.IsOverBudget(),
		})
	}

	if s.templates == nil {
		NewHTMXResponse().
			BodyHTML(`<section id="overview" class="overview"><div class="placeholder">Total Expenses: ` + data.Total + `</div></section>`).
			Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "overview.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpRender,
			"template", "overview.html",
			"year", params.Year,
			"month", params.Month)
		NewHTMXResponse().
			BodyHTML(`<section id="overview" class="overview"><div class="placeholder">Error rendering overview</div></section>`).
			Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

// categoryRows scales each category against the largest one for the bar
// widths in the overview.
func categoryRows(cats []core.CategoryAmount) []categoryRow {
	var maxCents int64
	for _, c := range cats {
		if c.Amount.Cents > maxCents {
			maxCents = c.Amount.Cents
		}
	}
	rows := make([]categoryRow, 0, len(cats))
	for _, c := range cats {
		width := 0
		if maxCents > 0 && c.Amount.Cents > 0 {
			width = int((c.Amount.Cents*100 + maxCents/2) / maxCents)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		rows = append(rows, categoryRow{Name: c.Name, Amount: formatDollars(c.Amount), Width: width})
	}
	return rows
}

type summaryExpense struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

type summaryBudget struct {
	Category       string `json:"category"`
	LimitCents     int64  `json:"limit_cents"`
	SpentCents     int64  `json:"spent_cents"`
	RemainingCents int64  `json:"remaining_cents"`
	OverBudget     bool   `json:"over_budget"`
}

type summaryResponse struct {
	TotalCents     int64            `json:"total_cents"`
	Total          string           `json:"total"`
	ThisMonthCents int64            `json:"this_month_cents"`
	ThisMonth      string           `json:"this_month"`
	Expenses       []summaryExpense `json:"expenses"`
	Budgets        []summaryBudget  `json:"budgets"`
}

// handleSummary returns a JSON snapshot of the ledger. Expenses are listed
// newest first.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	l := s.tracker.Ledger()
	total := l.TotalExpenses()
	month := s.getOverview(r.Context(), now.Year(), int(now.Month())).Total

	resp := summaryResponse{
		TotalCents:     total.Cents,
		Total:          total.String(),
		ThisMonthCents: month.Cents,
		ThisMonth:      month.String(),
		Expenses:       []summaryExpense{},
		Budgets:        []summaryBudget{},
	}
	for _, e := range report.NewestFirst(l.Expenses()) {
		resp.Expenses = append(resp.Expenses, summaryExpense{
			Date:        e.Date().String(),
			Category:    e.Category(),
			Description: e.Description(),
			AmountCents: e.Amount().Cents,
			Amount:      e.Amount().String(),
		})
	}
	for _, b := range l.Budgets() {
		resp.Budgets = append(resp.Budgets, summaryBudget{
			Category:       b.Category(),
			LimitCents:     b.Limit().Cents,
			SpentCents:     b.Spent().Cents,
			RemainingCents: b.Remaining().Cents,
			OverBudget:     b.IsOverBudget(),
		})
	}
	NewHTMXResponse().BodyJSON(resp).Write(w)
}

// handleExportXLSX streams the whole ledger as a workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	l := s.tracker.Ledger()
	expenses := l.Expenses()

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, expenses, l.Budgets()); err != nil {
		s.structured.LogError(r.Context(), "XLSX export failed", err,
			log.ComponentReport, log.OpExport, log.NewFields().WithErrorType(log.ErrorTypeInternal))
		InternalServerError("Export failed").Write(w)
		return
	}

	filename := fmt.Sprintf("spendwise-%s.xlsx", core.DateOf(s.now()))
	s.logger.InfoContext(r.Context(), "Ledger exported",
		log.FieldOperation, log.OpExport,
		"expenses", len(expenses),
		"bytes", buf.Len())
	NewHTMXResponse().
		Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		Header("Content-Disposition", `attachment; filename="`+filename+`"`).
		BodyString(buf.String()).
		Write(w)
}
