package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"talaan/internal/core"
)

// --- budget line items ---

func (r *SQLiteRepository) CreateLineItem(ctx context.Context, item core.BudgetLineItem) (core.BudgetLineItem, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_line_items (name, year, proposed_budget_cents)
		VALUES (?, ?, ?)`,
		item.Name, item.Year, item.ProposedBudget.Cents)
	if err != nil {
		return core.BudgetLineItem{}, fmt.Errorf("insert line item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.BudgetLineItem{}, fmt.Errorf("line item id: %w", err)
	}
	item.ID = id
	return item, nil
}

func (r *SQLiteRepository) GetLineItem(ctx context.Context, id int64) (core.BudgetLineItem, error) {
	var item core.BudgetLineItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, year, proposed_budget_cents
		FROM budget_line_items WHERE id = ?`, id).
		Scan(&item.ID, &item.Name, &item.Year, &item.ProposedBudget.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetLineItem{}, ErrNotFound
	}
	if err != nil {
		return core.BudgetLineItem{}, fmt.Errorf("get line item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) ListLineItems(ctx context.Context, year int) ([]core.BudgetLineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, year, proposed_budget_cents
		FROM budget_line_items WHERE year = ? ORDER BY name`, year)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetLineItem
	for rows.Next() {
		var item core.BudgetLineItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Year, &item.ProposedBudget.Cents); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// --- yearly budgets ---

// GetYearlyBudget returns the aggregate row for a year, creating an empty one
// on first access so callers never see ErrNotFound for a valid year.
func (r *SQLiteRepository) GetYearlyBudget(ctx context.Context, year int) (core.YearlyBudget, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO yearly_budgets (year) VALUES (?)`, year); err != nil {
		return core.YearlyBudget{}, fmt.Errorf("ensure yearly budget: %w", err)
	}
	return scanYearlyBudget(r.db.QueryRowContext(ctx, `
		SELECT year, total_budget_cents, remaining_balance_cents, total_expense_cents, total_income_cents
		FROM yearly_budgets WHERE year = ?`, year))
}

// SetTotalBudget replaces a year's total budget and rebases the remaining
// balance so total == remaining + expenses still holds.
func (r *SQLiteRepository) SetTotalBudget(ctx context.Context, year int, total core.Money) (core.YearlyBudget, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.YearlyBudget{}, fmt.Errorf("begin set budget: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO yearly_budgets (year) VALUES (?)`, year); err != nil {
		return core.YearlyBudget{}, fmt.Errorf("ensure yearly budget: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE yearly_budgets
		SET total_budget_cents = ?, remaining_balance_cents = ? - total_expense_cents
		WHERE year = ?`, total.Cents, total.Cents, year); err != nil {
		return core.YearlyBudget{}, fmt.Errorf("set total budget: %w", err)
	}

	budget, err := scanYearlyBudget(tx.QueryRowContext(ctx, `
		SELECT year, total_budget_cents, remaining_balance_cents, total_expense_cents, total_income_cents
		FROM yearly_budgets WHERE year = ?`, year))
	if err != nil {
		return core.YearlyBudget{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.YearlyBudget{}, fmt.Errorf("commit set budget: %w", err)
	}
	return budget, nil
}

func scanYearlyBudget(row *sql.Row) (core.YearlyBudget, error) {
	var b core.YearlyBudget
	err := row.Scan(&b.Year, &b.TotalBudget.Cents, &b.RemainingBalance.Cents,
		&b.TotalExpense.Cents, &b.TotalIncome.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.YearlyBudget{}, ErrNotFound
	}
	if err != nil {
		return core.YearlyBudget{}, fmt.Errorf("scan yearly budget: %w", err)
	}
	return b, nil
}

// --- incomes ---

func (r *SQLiteRepository) AddIncome(ctx context.Context, inc core.IncomeEntry) (core.IncomeEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.IncomeEntry{}, fmt.Errorf("begin add income: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO income_entries (description, source, amount_cents, year)
		VALUES (?, ?, ?, ?)`,
		inc.Description, inc.Source, inc.Amount.Cents, inc.Year)
	if err != nil {
		return core.IncomeEntry{}, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.IncomeEntry{}, fmt.Errorf("income id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO yearly_budgets (year) VALUES (?)`, inc.Year); err != nil {
		return core.IncomeEntry{}, fmt.Errorf("ensure yearly budget: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE yearly_budgets SET total_income_cents = total_income_cents + ?
		WHERE year = ?`, inc.Amount.Cents, inc.Year); err != nil {
		return core.IncomeEntry{}, fmt.Errorf("bump total income: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.IncomeEntry{}, fmt.Errorf("commit add income: %w", err)
	}
	inc.ID = id
	return inc, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, year int) ([]core.IncomeEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, source, amount_cents, year
		FROM income_entries WHERE year = ? ORDER BY id DESC`, year)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeEntry
	for rows.Next() {
		var inc core.IncomeEntry
		if err := rows.Scan(&inc.ID, &inc.Description, &inc.Source, &inc.Amount.Cents, &inc.Year); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// --- expense entries ---

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.ExpenseEntry, error) {
	return scanExpense(r.db.QueryRowContext(ctx, expenseSelect+` WHERE id = ?`, id))
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, year int, includeArchived bool) ([]core.ExpenseEntry, error) {
	query := expenseSelect + ` WHERE year = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseEntry
	for rows.Next() {
		var e core.ExpenseEntry
		var archived int
		if err := rows.Scan(&e.ID, &e.Description, &e.Proposed.Cents, &e.Actual.Cents,
			&e.Returned.Cents, &e.LineItemID, &e.Year, &archived, &e.Version); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Archived = archived != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

const expenseSelect = `
	SELECT id, description, proposed_cents, actual_cents, returned_cents, line_item_id, year, archived, version
	FROM expense_entries`

func scanExpense(row *sql.Row) (core.ExpenseEntry, error) {
	var e core.ExpenseEntry
	var archived int
	err := row.Scan(&e.ID, &e.Description, &e.Proposed.Cents, &e.Actual.Cents,
		&e.Returned.Cents, &e.LineItemID, &e.Year, &archived, &e.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseEntry{}, ErrNotFound
	}
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Archived = archived != 0
	return e, nil
}

// CreateExpense inserts the entry and draws its pools down in one
// transaction. The entry's line item must belong to the same year.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("begin create expense: %w", err)
	}
	defer tx.Rollback()

	snap, err := readSnapshot(ctx, tx, e.Year, e.LineItemID)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	delta, err := core.ComputeCreateDelta(snap, e.Proposed, e.Actual)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	e.Returned = core.ReturnAmount(e.Proposed, e.Actual)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO expense_entries (description, proposed_cents, actual_cents, returned_cents, line_item_id, year)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Description, e.Proposed.Cents, e.Actual.Cents, e.Returned.Cents, e.LineItemID, e.Year)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("expense id: %w", err)
	}

	if err := applyDelta(ctx, tx, e.Year, e.LineItemID, delta); err != nil {
		return core.ExpenseEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("commit create expense: %w", err)
	}
	e.ID = id
	e.Version = 1
	return e, nil
}

// UpdateExpense rebases the entry's draw from its persisted amounts onto the
// new ones, all inside one transaction.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, description string, proposed, actual core.Money) (core.ExpenseEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("begin update expense: %w", err)
	}
	defer tx.Rollback()

	prev, err := scanExpense(tx.QueryRowContext(ctx, expenseSelect+` WHERE id = ?`, id))
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	if prev.Archived {
		return core.ExpenseEntry{}, core.ErrEntryArchived
	}

	snap, err := readSnapshot(ctx, tx, prev.Year, prev.LineItemID)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	delta, err := core.ComputeEditDelta(snap, prev.Proposed, prev.Actual, proposed, actual)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	returned := core.ReturnAmount(proposed, actual)
	if _, err := tx.ExecContext(ctx, `
		UPDATE expense_entries
		SET description = ?, proposed_cents = ?, actual_cents = ?, returned_cents = ?,
		    version = version + 1, synced = 0, sync_error = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		description, proposed.Cents, actual.Cents, returned.Cents, id); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("update expense: %w", err)
	}

	if err := applyDelta(ctx, tx, prev.Year, prev.LineItemID, delta); err != nil {
		return core.ExpenseEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("commit update expense: %w", err)
	}

	prev.Description = description
	prev.Proposed = proposed
	prev.Actual = actual
	prev.Returned = returned
	prev.Version++
	return prev, nil
}

// ArchiveExpense hides the entry and returns its drawn amount to the pools.
func (r *SQLiteRepository) ArchiveExpense(ctx context.Context, id int64) (core.ExpenseEntry, error) {
	return r.toggleArchive(ctx, id, true)
}

// RestoreExpense brings an archived entry back, re-drawing its amount. Fails
// if the line item pool can no longer cover it.
func (r *SQLiteRepository) RestoreExpense(ctx context.Context, id int64) (core.ExpenseEntry, error) {
	return r.toggleArchive(ctx, id, false)
}

func (r *SQLiteRepository) toggleArchive(ctx context.Context, id int64, archive bool) (core.ExpenseEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("begin archive toggle: %w", err)
	}
	defer tx.Rollback()

	e, err := scanExpense(tx.QueryRowContext(ctx, expenseSelect+` WHERE id = ?`, id))
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	var delta core.Delta
	if archive {
		if e.Archived {
			return core.ExpenseEntry{}, core.ErrEntryArchived
		}
		delta = core.ComputeArchiveDelta(e.Proposed, e.Actual)
	} else {
		if !e.Archived {
			return core.ExpenseEntry{}, core.ErrEntryNotArchived
		}
		snap, err := readSnapshot(ctx, tx, e.Year, e.LineItemID)
		if err != nil {
			return core.ExpenseEntry{}, err
		}
		delta, err = core.ComputeRestoreDelta(snap, e.Proposed, e.Actual)
		if err != nil {
			return core.ExpenseEntry{}, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE expense_entries
		SET archived = ?, version = version + 1, synced = 0, sync_error = 0,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, boolToInt(archive), id); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("toggle archive: %w", err)
	}

	if err := applyDelta(ctx, tx, e.Year, e.LineItemID, delta); err != nil {
		return core.ExpenseEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("commit archive toggle: %w", err)
	}
	e.Archived = archive
	e.Version++
	return e, nil
}

// DeleteExpense permanently removes an archived entry. The pools were
// already settled when the entry was archived, so no delta applies.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete expense: %w", err)
	}
	defer tx.Rollback()

	e, err := scanExpense(tx.QueryRowContext(ctx, expenseSelect+` WHERE id = ?`, id))
	if err != nil {
		return err
	}
	if !e.Archived {
		return core.ErrEntryNotArchived
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete expense: %w", err)
	}
	return nil
}

// readSnapshot reads the three pools inside the caller's transaction.
func readSnapshot(ctx context.Context, tx *sql.Tx, year int, lineItemID int64) (core.BudgetSnapshot, error) {
	var snap core.BudgetSnapshot

	var itemYear int
	err := tx.QueryRowContext(ctx,
		`SELECT proposed_budget_cents, year FROM budget_line_items WHERE id = ?`, lineItemID).
		Scan(&snap.ProposedBudget.Cents, &itemYear)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetSnapshot{}, core.ErrMissingLineItem
	}
	if err != nil {
		return core.BudgetSnapshot{}, fmt.Errorf("read line item pool: %w", err)
	}
	if itemYear != year {
		return core.BudgetSnapshot{}, fmt.Errorf("line item %d belongs to year %d, not %d: %w",
			lineItemID, itemYear, year, core.ErrMissingLineItem)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO yearly_budgets (year) VALUES (?)`, year); err != nil {
		return core.BudgetSnapshot{}, fmt.Errorf("ensure yearly budget: %w", err)
	}
	err = tx.QueryRowContext(ctx,
		`SELECT remaining_balance_cents, total_expense_cents FROM yearly_budgets WHERE year = ?`, year).
		Scan(&snap.RemainingBalance.Cents, &snap.TotalExpense.Cents)
	if err != nil {
		return core.BudgetSnapshot{}, fmt.Errorf("read yearly pools: %w", err)
	}
	return snap, nil
}

// applyDelta writes a validated delta to both pool tables.
func applyDelta(ctx context.Context, tx *sql.Tx, year int, lineItemID int64, delta core.Delta) error {
	if delta.IsZero() {
		return nil
	}
	if err := delta.Validate(); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE yearly_budgets
		SET remaining_balance_cents = remaining_balance_cents + ?,
		    total_expense_cents = total_expense_cents + ?
		WHERE year = ?`, delta.RemainingBalance, delta.TotalExpense, year); err != nil {
		return fmt.Errorf("apply yearly delta: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE budget_line_items SET proposed_budget_cents = proposed_budget_cents + ?
		WHERE id = ?`, delta.ProposedBudget, lineItemID); err != nil {
		return fmt.Errorf("apply line item delta: %w", err)
	}
	return nil
}

// --- sync bookkeeping ---

func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]core.ExpenseEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		expenseSelect+` WHERE synced = 0 AND sync_error = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync entries: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseEntry
	for rows.Next() {
		var e core.ExpenseEntry
		var archived int
		if err := rows.Scan(&e.ID, &e.Description, &e.Proposed.Cents, &e.Actual.Cents,
			&e.Returned.Cents, &e.LineItemID, &e.Year, &archived, &e.Version); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		e.Archived = archived != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expense_entries SET synced = 1, sync_error = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expense_entries SET sync_error = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	return requireRow(res)
}
