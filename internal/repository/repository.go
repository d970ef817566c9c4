package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/rules"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db *sqlx.DB // nil when bound to a transaction

	Categories   *CategoryRepository
	Suppliers    *SupplierRepository
	Customers    *CustomerRepository
	Staff        *StaffRepository
	Products     *ProductRepository
	Units        *InventoryRepository
	Sales        *SaleRepository
	Warranties   *WarrantyRepository
	Repairs      *RepairRepository
	Pawns        *PawnRepository
	Transactions *TransactionRepository
	Debts        *DebtRepository
}

// NewStore builds a Store on top of a database handle.
func NewStore(db *sqlx.DB) *Store {
	s := bind(db)
	s.db = db
	return s
}

func bind(q sqlx.ExtContext) *Store {
	return &Store{
		Categories:   &CategoryRepository{db: q},
		Suppliers:    &SupplierRepository{db: q},
		Customers:    &CustomerRepository{db: q},
		Staff:        &StaffRepository{db: q},
		Products:     &ProductRepository{db: q},
		Units:        &InventoryRepository{db: q},
		Sales:        &SaleRepository{db: q},
		Warranties:   &WarrantyRepository{db: q},
		Repairs:      &RepairRepository{db: q},
		Pawns:        &PawnRepository{db: q},
		Transactions: &TransactionRepository{db: q},
		Debts:        &DebtRepository{db: q},
	}
}

// DB returns the underlying handle, or nil inside a transaction.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// InTx runs fn inside one database transaction. Every repository on the Store
// passed to fn is bound to that transaction. The transaction commits when fn
// returns nil and rolls back otherwise. Calling InTx on a Store that is already
// transactional runs fn in the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &rules.PersistenceError{Op: "begin transaction", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(bind(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return &rules.PersistenceError{Op: "commit transaction", Err: err}
	}
	return nil
}

// wrapErr maps driver errors onto the domain error taxonomy.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if key, ok := uniqueViolation(err); ok {
		return &rules.DuplicateKeyError{Key: key}
	}
	return &rules.PersistenceError{Op: op, Err: err}
}

// uniqueViolation recognises unique constraint failures of both drivers and
// returns the offending column or constraint.
func uniqueViolation(err error) (string, bool) {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return strings.TrimPrefix(se.Error(), "UNIQUE constraint failed: "), true
	}
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return pe.Constraint, true
	}
	return "", false
}

func getOne(ctx context.Context, db sqlx.ExtContext, dest any, entity, key, query string, args ...any) error {
	err := sqlx.GetContext(ctx, db, dest, db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return &rules.NotFoundError{Entity: entity, Key: key}
	}
	return wrapErr("get "+entity, err)
}

func selectAll(ctx context.Context, db sqlx.ExtContext, dest any, op, query string, args ...any) error {
	return wrapErr(op, sqlx.SelectContext(ctx, db, dest, db.Rebind(query), args...))
}

func count(ctx context.Context, db sqlx.ExtContext, op, query string, args ...any) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, db, &n, db.Rebind(query), args...); err != nil {
		return 0, wrapErr(op, err)
	}
	return n, nil
}

func exists(ctx context.Context, db sqlx.ExtContext, op, query string, args ...any) (bool, error) {
	n, err := count(ctx, db, op, query, args...)
	return n > 0, err
}

// insert runs an INSERT ... RETURNING id and returns the new id.
func insert(ctx context.Context, db sqlx.ExtContext, op, query string, args ...any) (int, error) {
	var id int
	if err := db.QueryRowxContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, wrapErr(op, err)
	}
	return id, nil
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db sqlx.ExtContext, entity string, id int, query string, args ...any) error {
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return wrapErr("update "+entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("update "+entity, err)
	}
	if n == 0 {
		return &rules.NotFoundError{Entity: entity, Key: fmt.Sprintf("#%d", id)}
	}
	return nil
}

// filter accumulates WHERE clauses and their arguments.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) add(clause string, args ...any) {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, args...)
}

// search matches term case-insensitively against any of the columns.
func (f *filter) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	like := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = like
	}
	f.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// page normalises pagination input and returns limit and offset.
func page(p, limit int) (int, int) {
	if p <= 0 {
		p = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, (p - 1) * limit
}
