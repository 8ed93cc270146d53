// Package services provides business logic and orchestration.
//
// Every operation follows the same shape: load the user's dataset,
// complete the override table, apply the mutation, save the whole
// snapshot back. The dataset is small enough that wholesale replacement
// beats row-level bookkeeping.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ordenate/internal/budget"
	"ordenate/internal/cache"
	"ordenate/internal/core"
	"ordenate/internal/log"
)

// Side selects which half of the budget an operation targets.
type Side string

const (
	SideExpense Side = "expense"
	SideIncome  Side = "income"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidSide  = errors.New("invalid side")
	ErrInvalidYear  = errors.New("invalid year")
	ErrInvalidMonth = errors.New("invalid month")
)

const (
	tableCacheSize = 64
	tableCacheTTL  = 10 * time.Minute
)

// BudgetService orchestrates dataset operations across storage and the
// export pipeline.
type BudgetService struct {
	store     Store
	publisher SyncPublisher
	logger    *log.Logger
	tables    *cache.LRUCache[budget.YearTable]
	now       func() time.Time
}

func NewBudgetService(store Store, publisher SyncPublisher, logger *log.Logger) *BudgetService {
	return &BudgetService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentBudget),
		tables:    cache.NewLRUCache[budget.YearTable](tableCacheSize, tableCacheTTL),
		now:       time.Now,
	}
}

// TableCache exposes the memo cache for cleanup registration.
func (s *BudgetService) TableCache() cache.Cleaner {
	return s.tables
}

// load reads the dataset and completes the override table. When the
// migration added rows the completed snapshot is persisted immediately
// so every later read sees the same table.
func (s *BudgetService) load(ctx context.Context, userID int64) (*core.Dataset, error) {
	start := time.Now()
	ds, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	s.logger.DebugContext(ctx, "dataset loaded",
		log.FieldUser, userID,
		log.FieldDuration, time.Since(start).Milliseconds())

	ref := core.CurrentPeriod(s.now())
	var expChanged, incChanged bool
	ds.ExpenseOverrides, expChanged = budget.MigrateFromBase(ds.Expenses, ds.ExpenseOverrides, ref)
	ds.IncomeOverrides, incChanged = budget.MigrateFromBase(ds.Incomes, ds.IncomeOverrides, ref)

	if expChanged || incChanged {
		s.logger.InfoContext(ctx, "override table completed",
			log.FieldUser, userID, log.FieldOperation, log.OpMigrate)
		if err := s.persist(ctx, userID, ds); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// persist bumps the version, saves and notifies the export pipeline.
// Publish failures are logged and swallowed; the save already happened.
func (s *BudgetService) persist(ctx context.Context, userID int64, ds *core.Dataset) error {
	ds.Touch()
	start := time.Now()
	if err := s.store.Save(ctx, userID, ds); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	s.logger.DebugContext(ctx, "dataset saved",
		log.FieldUser, userID,
		log.FieldDatasetVersion, ds.Version,
		log.FieldDuration, time.Since(start).Milliseconds())

	if s.publisher != nil {
		if err := s.publisher.PublishDatasetSync(ctx, userID, ds.Version); err != nil {
			s.logger.WarnContext(ctx, "publish sync message failed",
				log.FieldUser, userID,
				log.FieldDatasetVersion, ds.Version,
				log.FieldError, err)
		}
	}
	return nil
}

func (s *BudgetService) items(ds *core.Dataset, side Side) ([]core.Item, []core.Override, error) {
	switch side {
	case SideExpense:
		return ds.Expenses, ds.ExpenseOverrides, nil
	case SideIncome:
		return ds.Incomes, ds.IncomeOverrides, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidSide, side)
	}
}

// RegisterExpense validates and adds an expense, seeding its override
// rows at the base amount.
func (s *BudgetService) RegisterExpense(ctx context.Context, userID int64, item core.Item) (core.Item, error) {
	return s.registerItem(ctx, userID, SideExpense, item)
}

// RegisterIncome validates and adds an income item.
func (s *BudgetService) RegisterIncome(ctx context.Context, userID int64, item core.Item) (core.Item, error) {
	return s.registerItem(ctx, userID, SideIncome, item)
}

func (s *BudgetService) registerItem(ctx context.Context, userID int64, side Side, item core.Item) (core.Item, error) {
	if err := item.Validate(); err != nil {
		return core.Item{}, err
	}

	ds, err := s.load(ctx, userID)
	if err != nil {
		return core.Item{}, err
	}

	ref := core.CurrentPeriod(s.now())
	switch side {
	case SideExpense:
		item.ID = core.NextItemID(ds.Expenses)
		ds.Expenses = append(ds.Expenses, item)
		ds.ExpenseOverrides = budget.AppendIfAbsent(ds.ExpenseOverrides, item, budget.DuePeriods(item, ref))
	case SideIncome:
		item.ID = core.NextItemID(ds.Incomes)
		ds.Incomes = append(ds.Incomes, item)
		ds.IncomeOverrides = budget.AppendIfAbsent(ds.IncomeOverrides, item, budget.DuePeriods(item, ref))
	}

	if err := s.persist(ctx, userID, ds); err != nil {
		return core.Item{}, err
	}

	s.logger.InfoContext(ctx, "item registered",
		log.FieldUser, userID,
		log.FieldItemName, item.Name,
		log.FieldAmountCents, item.BaseAmount.Cents,
		log.FieldOperation, log.OpCreate)
	return item, nil
}

// DeleteExpenses removes expenses and cascades to their override and
// payment rows.
func (s *BudgetService) DeleteExpenses(ctx context.Context, userID int64, ids []int64) error {
	ds, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	gone := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if core.FindItem(ds.Expenses, id) == nil {
			return fmt.Errorf("%w: expense %d", ErrItemNotFound, id)
		}
		gone[id] = struct{}{}
	}

	kept := ds.Expenses[:0]
	for _, it := range ds.Expenses {
		if _, ok := gone[it.ID]; !ok {
			kept = append(kept, it)
		}
	}
	ds.Expenses = kept
	ds.ExpenseOverrides = budget.DropItems(ds.ExpenseOverrides, gone)

	payments := ds.Payments[:0]
	for _, p := range ds.Payments {
		if _, ok := gone[p.ItemID]; !ok {
			payments = append(payments, p)
		}
	}
	ds.Payments = payments

	if err := s.persist(ctx, userID, ds); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "expenses deleted",
		log.FieldUser, userID, "count", len(ids), log.FieldOperation, log.OpDelete)
	return nil
}

// RegisterPayments records a batch of payments for one period and
// returns the names of the rows skipped as already paid.
func (s *BudgetService) RegisterPayments(ctx context.Context, userID int64, year, month int, reqs []budget.PaymentRequest) ([]string, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	ds, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range reqs {
		item := core.FindItem(ds.Expenses, reqs[i].ItemID)
		if item == nil {
			return nil, fmt.Errorf("%w: expense %d", ErrItemNotFound, reqs[i].ItemID)
		}
		if reqs[i].Name == "" {
			reqs[i].Name = item.Name
		}
		// An omitted amount pays the budgeted figure for the period.
		if reqs[i].Amount.IsZero() {
			reqs[i].Amount = budget.AmountFor(ds.ExpenseOverrides, item.ID, year, month)
		}
	}

	var skipped []string
	ds.Payments, skipped = budget.RegisterPayments(ds.Payments, reqs, year, month)

	if err := s.persist(ctx, userID, ds); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payments registered",
		log.FieldUser, userID,
		log.FieldYear, year,
		log.FieldMonth, month,
		log.FieldSkipped, len(skipped),
		log.FieldOperation, log.OpPay)
	return skipped, nil
}

// ReplaceYearAmounts overwrites one side's override rows for a year
// with an explicit twelve-month table per item.
func (s *BudgetService) ReplaceYearAmounts(ctx context.Context, userID int64, side Side, year int, table map[int64][12]core.Money) error {
	if year < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	ds, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	items, _, err := s.items(ds, side)
	if err != nil {
		return err
	}
	for itemID := range table {
		if core.FindItem(items, itemID) == nil {
			return fmt.Errorf("%w: %s %d", ErrItemNotFound, side, itemID)
		}
	}

	rows := budget.BuildYearRows(year, table)
	switch side {
	case SideExpense:
		ds.ExpenseOverrides = budget.ReplaceYear(ds.ExpenseOverrides, year, rows)
	case SideIncome:
		ds.IncomeOverrides = budget.ReplaceYear(ds.IncomeOverrides, year, rows)
	}

	if err := s.persist(ctx, userID, ds); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "year amounts replaced",
		log.FieldUser, userID,
		log.FieldYear, year,
		"side", string(side),
		log.FieldOperation, log.OpUpdate)
	return nil
}

// SetBalance updates the account balance used as projection start.
func (s *BudgetService) SetBalance(ctx context.Context, userID int64, balance core.Money) error {
	ds, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	ds.Account.Balance = balance
	return s.persist(ctx, userID, ds)
}

// SetComment replaces the dataset's free-form note.
func (s *BudgetService) SetComment(ctx context.Context, userID int64, comment string) error {
	ds, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	ds.Comment = comment
	return s.persist(ctx, userID, ds)
}

// Dataset returns the user's migrated dataset for read-only use.
func (s *BudgetService) Dataset(ctx context.Context, userID int64) (*core.Dataset, error) {
	return s.load(ctx, userID)
}

// YearTable returns the expanded monthly table for one side of the
// budget, memoized against the dataset version.
func (s *BudgetService) YearTable(ctx context.Context, userID int64, side Side, year int) (budget.YearTable, error) {
	ds, err := s.load(ctx, userID)
	if err != nil {
		return budget.YearTable{}, err
	}

	key := fmt.Sprintf("%d:%d:%s:%d", userID, ds.Version, side, year)
	if table, ok := s.tables.Get(key); ok {
		return table, nil
	}

	items, overrides, err := s.items(ds, side)
	if err != nil {
		return budget.YearTable{}, err
	}

	table := budget.BuildYearTable(items, overrides, year)
	s.tables.Set(key, table)
	return table, nil
}

// MonthlySummary returns the budgeted, paid and pending totals of a month.
func (s *BudgetService) MonthlySummary(ctx context.Context, userID int64, year, month int) (budget.MonthlySummary, error) {
	ds, err := s.load(ctx, userID)
	if err != nil {
		return budget.MonthlySummary{}, err
	}
	return budget.Summarize(ds, year, month), nil
}

// AnnualSummary returns the twelve-row yearly overview.
func (s *BudgetService) AnnualSummary(ctx context.Context, userID int64, year int) ([]budget.AnnualRow, error) {
	ds, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return budget.AnnualSummary(ds, year), nil
}

// PendingItems lists the expenses still due in a month.
func (s *BudgetService) PendingItems(ctx context.Context, userID int64, year, month int) ([]budget.PendingItem, error) {
	ds, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return budget.PendingItems(ds, year, month), nil
}

// Projection is the forward-looking balance pair shown on the overview.
type Projection struct {
	EndOfYear core.Money
	EndOfNext core.Money
	FromYear  int
	FromMonth int
}

// ProjectBalances rolls the account balance through the budgeted plan:
// the rest of the current year first, then the whole next year.
func (s *BudgetService) ProjectBalances(ctx context.Context, userID int64) (Projection, error) {
	ds, err := s.load(ctx, userID)
	if err != nil {
		return Projection{}, err
	}

	ref := core.CurrentPeriod(s.now())
	endOfYear := budget.ProjectBalance(ds, ds.Account.Balance, ref.Year, ref.Month, 12)
	endOfNext := budget.ProjectBalance(ds, endOfYear, ref.Year+1, 1, 12)

	return Projection{
		EndOfYear: endOfYear,
		EndOfNext: endOfNext,
		FromYear:  ref.Year,
		FromMonth: ref.Month,
	}, nil
}

// Close releases the storage backend.
func (s *BudgetService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
