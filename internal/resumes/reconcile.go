package resumes

import (
	"context"
	"database/sql"
	"fmt"
)

// Reconciled is the outcome of resolving a shared dimension row by its
// natural key. Inserted reports whether this call created the row.
type Reconciled struct {
	ID       int64
	Inserted bool
}

// The dimension tables are shared across users, so resolution happens with
// an upsert instead of select-then-insert: concurrent ingests racing on the
// same natural key both land on the same row. The DO UPDATE touches the row
// so RETURNING fires on the conflict path, and xmax = 0 distinguishes a
// fresh insert from an existing row.

func reconcileCompanyTx(ctx context.Context, tx *sql.Tx, name string) (Reconciled, error) {
	return reconcileNamedTx(ctx, tx, "companies", name)
}

func reconcileSchoolTx(ctx context.Context, tx *sql.Tx, name string) (Reconciled, error) {
	return reconcileNamedTx(ctx, tx, "schools", name)
}

func reconcileNamedTx(ctx context.Context, tx *sql.Tx, table, name string) (Reconciled, error) {
	q := fmt.Sprintf(`
		INSERT INTO %s (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id, (xmax = 0) AS inserted`, table)
	var rec Reconciled
	if err := tx.QueryRowContext(ctx, q, name).Scan(&rec.ID, &rec.Inserted); err != nil {
		return Reconciled{}, fmt.Errorf("reconcile %s %q: %w", table, name, err)
	}
	return rec, nil
}

func reconcileSkillTx(ctx context.Context, tx *sql.Tx, text string) (Reconciled, error) {
	var rec Reconciled
	err := tx.QueryRowContext(ctx, `
		INSERT INTO skills (text)
		VALUES ($1)
		ON CONFLICT (text) DO UPDATE SET text = EXCLUDED.text
		RETURNING id, (xmax = 0) AS inserted`, text).Scan(&rec.ID, &rec.Inserted)
	if err != nil {
		return Reconciled{}, fmt.Errorf("reconcile skill %q: %w", text, err)
	}
	return rec, nil
}

func reconcileLocationTx(ctx context.Context, tx *sql.Tx, city, state, country string) (Reconciled, error) {
	var rec Reconciled
	err := tx.QueryRowContext(ctx, `
		INSERT INTO locations (city, state, country)
		VALUES ($1, $2, $3)
		ON CONFLICT (city, country) DO UPDATE SET state = EXCLUDED.state, updated_at = now()
		RETURNING id, (xmax = 0) AS inserted`, city, state, country).Scan(&rec.ID, &rec.Inserted)
	if err != nil {
		return Reconciled{}, fmt.Errorf("reconcile location %q/%q: %w", city, country, err)
	}
	return rec, nil
}
