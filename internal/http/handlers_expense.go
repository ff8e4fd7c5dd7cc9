package http

import (
	"errors"
	"html/template"
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

const msgInvalidDate = "Please enter a valid date (YYYY-MM-DD)"

type expenseJSON struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type budgetJSON struct {
	Category   string `json:"category"`
	Limit      string `json:"limit"`
	Spent      string `json:"spent"`
	Remaining  string `json:"remaining"`
	OverBudget bool   `json:"over_budget"`
}

type outcomeJSON struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	OverBudget bool         `json:"over_budget,omitempty"`
	Expense    *expenseJSON `json:"expense,omitempty"`
	Budget     *budgetJSON  `json:"budget,omitempty"`
}

// parseBody reads a form or JSON body. On failure it writes the error
// response and returns nil.
func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.logger.WarnContext(r.Context(), "Invalid request body",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldPath, r.URL.Path)
		if errors.Is(err, ErrBodyTooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "Request too large").Write(w)
			return nil
		}
		BadRequestError("Invalid request format").Write(w)
		return nil
	}
	return p
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := s.parseBody(w, r)
	if p == nil {
		return
	}
	asJSON := wantsJSON(r, p)

	date, err := parseDate(p.Get("date"))
	if err != nil {
		s.writeRejected(w, asJSON, msgInvalidDate)
		return
	}

	out, err := s.tracker.RecordExpense(r.Context(), services.ExpenseInput{
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        date,
	})
	if err != nil {
		s.writeFailure(w, r, asJSON, err)
		return
	}
	s.recordWrite(&s.expensesCreated)

	e := out.Expense
	resp := NewHTMXResponse().
		TriggerFormReset().
		TriggerLedgerChanged(e.Date().Year(), e.Date().Month())
	if out.OverBudget {
		resp.TriggerWarningNotification(out.Message)
	} else {
		resp.TriggerSuccessNotification(out.Message)
	}

	if asJSON {
		body := outcomeJSON{
			Success:    true,
			Message:    out.Message,
			OverBudget: out.OverBudget,
			Expense: &expenseJSON{
				Date:        e.Date().String(),
				Category:    e.Category(),
				Description: e.Description(),
				Amount:      e.Amount().String(),
			},
		}
		if out.HasBudget {
			body.Budget = toBudgetJSON(out.Budget)
		}
		resp.BodyJSON(body).Write(w)
		return
	}

	class := "success"
	if out.OverBudget {
		class = "warning"
	}
	resp.BodyHTML(`<div class="` + class + `">` + template.HTMLEscapeString(out.Message) + `: ` +
		template.HTMLEscapeString(e.String()) + `</div>`).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p := s.parseBody(w, r)
	if p == nil {
		return
	}
	asJSON := wantsJSON(r, p)

	out, err := s.tracker.SetBudget(r.Context(), services.BudgetInput{
		Category: p.Get("category"),
		Amount:   p.Get("amount"),
	})
	if err != nil {
		s.writeFailure(w, r, asJSON, err)
		return
	}
	s.recordWrite(&s.budgetsSet)

	now := s.now()
	resp := NewHTMXResponse().
		TriggerFormReset().
		TriggerLedgerChanged(now.Year(), int(now.Month())).
		TriggerSuccessNotification(out.Message)
	if asJSON {
		resp.BodyJSON(outcomeJSON{
			Success: true,
			Message: out.Message,
			Budget:  toBudgetJSON(out.Budget),
		}).Write(w)
		return
	}
	resp.BodyHTML(`<div class="success">` + template.HTMLEscapeString(out.Message) + `</div>`).Write(w)
}

// writeFailure answers a rejected write. Validation errors are the user's to
// fix and get a 422; anything else is a 500.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, asJSON bool, err error) {
	if services.IsValidationError(err) {
		s.writeRejected(w, asJSON, services.UserMessage(err))
		return
	}
	s.structured.LogError(r.Context(), "Write failed", err,
		log.ComponentHTTP, log.OpCreate, log.NewFields().WithErrorType(log.ErrorTypeInternal))
	if asJSON {
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			BodyJSON(outcomeJSON{Message: "Internal error"}).
			Write(w)
		return
	}
	InternalServerError("Internal error").Write(w)
}

// writeRejected sends a 422 without a form reset so the user's input stays.
func (s *Server) writeRejected(w http.ResponseWriter, asJSON bool, message string) {
	if asJSON {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(message).
			BodyJSON(outcomeJSON{Message: message}).
			Write(w)
		return
	}
	UnprocessableEntityError(message).Write(w)
}

func toBudgetJSON(b core.Budget) *budgetJSON {
	return &budgetJSON{
		Category:   b.Category(),
		Limit:      b.Limit().String(),
		Spent:      b.Spent().String(),
		Remaining:  b.Remaining().String(),
		OverBudget: b.IsOverBudget(),
	}
}
