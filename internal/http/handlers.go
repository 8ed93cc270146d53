package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ordenate/internal/auth"
	"ordenate/internal/budget"
	"ordenate/internal/core"
	"ordenate/internal/log"
	"ordenate/internal/services"
)

// --- wire types ---

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

type itemPayload struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Periodicity string `json:"periodicity"`
	PaymentDay  int    `json:"payment_day"`
	PaymentDate string `json:"payment_date"`
	ValidFrom   string `json:"valid_from"`
	ValidTo     string `json:"valid_to"`
}

type itemDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Periodicity string `json:"periodicity"`
	PaymentDay  int    `json:"payment_day,omitempty"`
	PaymentDate string `json:"payment_date,omitempty"`
	ValidFrom   string `json:"valid_from,omitempty"`
	ValidTo     string `json:"valid_to,omitempty"`
}

type paymentPayload struct {
	ItemID int64  `json:"item_id"`
	Amount string `json:"amount"`
	PaidOn string `json:"paid_on"`
}

type registerPaymentsPayload struct {
	Year     int              `json:"year"`
	Month    int              `json:"month"`
	Payments []paymentPayload `json:"payments"`
}

type deletePayload struct {
	IDs []int64 `json:"ids"`
}

type yearAmountsPayload struct {
	Rows map[string][]string `json:"rows"`
}

type summaryDTO struct {
	BudgetedCents int64  `json:"budgeted_cents"`
	ActualCents   int64  `json:"actual_cents"`
	PendingCents  int64  `json:"pending_cents"`
	Budgeted      string `json:"budgeted"`
	Actual        string `json:"actual"`
	Pending       string `json:"pending"`
}

type annualRowDTO struct {
	Month         int    `json:"month"`
	Label         string `json:"label"`
	IncomeCents   int64  `json:"income_cents"`
	BudgetedCents int64  `json:"budgeted_cents"`
	ActualCents   int64  `json:"actual_cents"`
	BalanceCents  int64  `json:"balance_cents"`
}

type pendingItemDTO struct {
	ItemID      int64  `json:"item_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

type yearRowDTO struct {
	ItemID      int64    `json:"item_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	AmountCents []int64  `json:"amount_cents"`
	Active      []bool   `json:"active"`
	TotalCents  int64    `json:"total_cents"`
	Amounts     []string `json:"amounts"`
}

type yearTableDTO struct {
	Year        int          `json:"year"`
	Rows        []yearRowDTO `json:"rows"`
	TotalsCents []int64      `json:"totals_cents"`
}

type projectionDTO struct {
	FromYear       int    `json:"from_year"`
	FromMonth      int    `json:"from_month"`
	EndOfYearCents int64  `json:"end_of_year_cents"`
	EndOfNextCents int64  `json:"end_of_next_cents"`
	EndOfYear      string `json:"end_of_year"`
	EndOfNext      string `json:"end_of_next"`
}

// --- auth handlers ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !readJSON(w, r, &payload) {
		return
	}

	userID, err := s.auth.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{UserID: userID, Token: s.newSession(userID)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !readJSON(w, r, &payload) {
		return
	}

	userID, err := s.auth.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{UserID: userID, Token: s.newSession(userID)})
}

// --- item handlers ---

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, userID int64) {
	s.createItem(w, r, userID, services.SideExpense)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request, userID int64) {
	s.createItem(w, r, userID, services.SideIncome)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request, userID int64, side services.Side) {
	var payload itemPayload
	if !readJSON(w, r, &payload) {
		return
	}

	item := payloadToItem(payload)
	var err error
	if side == services.SideExpense {
		item, err = s.budget.RegisterExpense(r.Context(), userID, item)
	} else {
		item, err = s.budget.RegisterIncome(r.Context(), userID, item)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, itemToDTO(item))
}

func (s *Server) handleDeleteExpenses(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload deletePayload
	if !readJSON(w, r, &payload) {
		return
	}
	if len(payload.IDs) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no ids given")
		return
	}

	if err := s.budget.DeleteExpenses(r.Context(), userID, payload.IDs); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- payment handlers ---

func (s *Server) handleRegisterPayments(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload registerPaymentsPayload
	if !readJSON(w, r, &payload) {
		return
	}

	reqs := make([]budget.PaymentRequest, 0, len(payload.Payments))
	for _, p := range payload.Payments {
		reqs = append(reqs, budget.PaymentRequest{
			ItemID: p.ItemID,
			Amount: core.ParseAmount(p.Amount),
			PaidOn: core.ParseDate(p.PaidOn),
		})
	}

	skipped, err := s.budget.RegisterPayments(r.Context(), userID, payload.Year, payload.Month, reqs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"skipped": skipped})
}

// --- amount table handlers ---

func (s *Server) handleReplaceYearAmounts(w http.ResponseWriter, r *http.Request, userID int64) {
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	side, ok := querySide(w, r)
	if !ok {
		return
	}

	var payload yearAmountsPayload
	if !readJSON(w, r, &payload) {
		return
	}

	table := make(map[int64][12]core.Money, len(payload.Rows))
	for key, amounts := range payload.Rows {
		itemID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid item id: "+key)
			return
		}
		if len(amounts) != 12 {
			writeError(w, http.StatusUnprocessableEntity, "each row needs 12 amounts")
			return
		}
		var months [12]core.Money
		for i, a := range amounts {
			months[i] = core.ParseAmount(a)
		}
		table[itemID] = months
	}

	if err := s.budget.ReplaceYearAmounts(r.Context(), userID, side, year, table); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleYearTable(w http.ResponseWriter, r *http.Request, userID int64) {
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	side, ok := querySide(w, r)
	if !ok {
		return
	}

	table, err := s.budget.YearTable(r.Context(), userID, side, year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dto := yearTableDTO{Year: table.Year, TotalsCents: make([]int64, 12)}
	for i, total := range table.Totals {
		dto.TotalsCents[i] = total.Cents
	}
	for _, row := range table.Rows {
		rowDTO := yearRowDTO{
			ItemID:      row.ItemID,
			Name:        row.Name,
			Category:    row.Category,
			AmountCents: make([]int64, 12),
			Active:      row.Active[:],
			TotalCents:  row.Total.Cents,
			Amounts:     make([]string, 12),
		}
		for i, amount := range row.Amounts {
			rowDTO.AmountCents[i] = amount.Cents
			rowDTO.Amounts[i] = amount.Format()
		}
		dto.Rows = append(dto.Rows, rowDTO)
	}
	writeJSON(w, http.StatusOK, dto)
}

// --- read handlers ---

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request, userID int64) {
	ds, err := s.budget.Dataset(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	expenses := make([]itemDTO, 0, len(ds.Expenses))
	for _, it := range ds.Expenses {
		expenses = append(expenses, itemToDTO(it))
	}
	incomes := make([]itemDTO, 0, len(ds.Incomes))
	for _, it := range ds.Incomes {
		incomes = append(incomes, itemToDTO(it))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expenses":      expenses,
		"incomes":       incomes,
		"balance_cents": ds.Account.Balance.Cents,
		"comment":       ds.Comment,
		"version":       ds.Version,
	})
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request, userID int64) {
	year, month := parseYearMonth(r)
	summary, err := s.budget.MonthlySummary(r.Context(), userID, year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryDTO{
		BudgetedCents: summary.Budgeted.Cents,
		ActualCents:   summary.Actual.Cents,
		PendingCents:  summary.Pending.Cents,
		Budgeted:      summary.Budgeted.Format(),
		Actual:        summary.Actual.Format(),
		Pending:       summary.Pending.Format(),
	})
}

func (s *Server) handleAnnualSummary(w http.ResponseWriter, r *http.Request, userID int64) {
	year, _ := parseYearMonth(r)
	rows, err := s.budget.AnnualSummary(r.Context(), userID, year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]annualRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, annualRowDTO{
			Month:         row.Month,
			Label:         row.Label,
			IncomeCents:   row.Income.Cents,
			BudgetedCents: row.Budgeted.Cents,
			ActualCents:   row.Actual.Cents,
			BalanceCents:  row.Balance.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePendingItems(w http.ResponseWriter, r *http.Request, userID int64) {
	year, month := parseYearMonth(r)
	pending, err := s.budget.PendingItems(r.Context(), userID, year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]pendingItemDTO, 0, len(pending))
	for _, p := range pending {
		out = append(out, pendingItemDTO{
			ItemID:      p.Item.ID,
			Name:        p.Item.Name,
			Category:    p.Item.Category,
			AmountCents: p.Amount.Cents,
			Amount:      p.Amount.Format(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request, userID int64) {
	projection, err := s.budget.ProjectBalances(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectionDTO{
		FromYear:       projection.FromYear,
		FromMonth:      projection.FromMonth,
		EndOfYearCents: projection.EndOfYear.Cents,
		EndOfNextCents: projection.EndOfNext.Cents,
		EndOfYear:      projection.EndOfYear.Format(),
		EndOfNext:      projection.EndOfNext.Format(),
	})
}

// --- account handlers ---

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload struct {
		Amount string `json:"amount"`
	}
	if !readJSON(w, r, &payload) {
		return
	}
	if err := s.budget.SetBalance(r.Context(), userID, core.ParseAmount(payload.Amount)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetComment(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload struct {
		Comment string `json:"comment"`
	}
	if !readJSON(w, r, &payload) {
		return
	}
	if err := s.budget.SetComment(r.Context(), userID, payload.Comment); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func payloadToItem(p itemPayload) core.Item {
	return core.Item{
		Name:        p.Name,
		Category:    p.Category,
		BaseAmount:  core.ParseAmount(p.Amount),
		Periodicity: core.Periodicity(p.Periodicity),
		PaymentDay:  p.PaymentDay,
		PaymentDate: core.ParseDate(p.PaymentDate),
		ValidFrom:   core.ParseDate(p.ValidFrom),
		ValidTo:     core.ParseDate(p.ValidTo),
	}
}

func itemToDTO(it core.Item) itemDTO {
	dto := itemDTO{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		AmountCents: it.BaseAmount.Cents,
		Amount:      it.BaseAmount.Format(),
		Periodicity: string(it.Periodicity),
		PaymentDay:  it.PaymentDay,
	}
	if !it.PaymentDate.IsZero() {
		dto.PaymentDate = it.PaymentDate.String()
	}
	if !it.ValidFrom.IsZero() {
		dto.ValidFrom = it.ValidFrom.String()
	}
	if !it.ValidTo.IsZero() {
		dto.ValidTo = it.ValidTo.String()
	}
	return dto
}

// parseYearMonth extracts year and month from query parameters,
// defaulting to the current period.
func parseYearMonth(r *http.Request) (year, month int) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	return year, month
}

func pathYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusUnprocessableEntity, "invalid year")
		return 0, false
	}
	return year, true
}

func querySide(w http.ResponseWriter, r *http.Request) (services.Side, bool) {
	switch r.URL.Query().Get("side") {
	case "", "expense":
		return services.SideExpense, true
	case "income":
		return services.SideIncome, true
	default:
		writeError(w, http.StatusUnprocessableEntity, "side must be expense or income")
		return "", false
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrEmptyUsername),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidPeriodicity),
		errors.Is(err, core.ErrInvalidDay),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrMissingAnchorDate),
		errors.Is(err, services.ErrInvalidSide),
		errors.Is(err, services.ErrInvalidYear),
		errors.Is(err, services.ErrInvalidMonth):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			"url", r.URL.Path, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
