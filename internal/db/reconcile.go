package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrInitialization marks every failure while connecting to or preparing the
// database. It is not recoverable; callers are expected to exit.
var ErrInitialization = errors.New("database initialization failed")

func initError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInitialization, step, err)
}

// Result summarises one reconciliation run.
type Result struct {
	Added []string // columns added during this run, in order
}

// Reconciler brings the live users table in line with UserColumns. It only
// ever adds structure; it never drops, renames or retypes columns.
type Reconciler struct {
	q   Querier
	log logrus.FieldLogger
}

// NewReconciler returns a Reconciler writing DDL through q.
func NewReconciler(q Querier, log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{q: q, log: log.WithField("table", UsersTable)}
}

// Run ensures the table exists and adds any missing evolvable columns.
// Running it repeatedly is equivalent to running it once.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	if _, err := r.q.ExecContext(ctx, createUsersTable); err != nil {
		return nil, initError("create table", err)
	}
	r.log.Info("Database initialized: table ensured")

	cols, err := DescribeTable(ctx, r.q, UsersTable)
	if err != nil {
		return nil, initError("read columns", err)
	}

	res := &Result{}
	for _, c := range evolvableColumns {
		if HasColumn(cols, c.Name) {
			continue
		}
		log := r.log.WithField("column", c.Name)
		log.Info("Schema migration required: adding column")
		if _, err := r.q.ExecContext(ctx, addColumnStatement(c)); err != nil {
			return res, initError("add column "+c.Name, err)
		}
		log.Info("Column added")
		res.Added = append(res.Added, c.Name)
	}
	return res, nil
}

// Initialize runs the reconciler with the standard logger.
func Initialize(ctx context.Context, q Querier) error {
	_, err := NewReconciler(q, logrus.StandardLogger()).Run(ctx)
	return err
}
