package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

// Replace removes whatever resume graph the user currently has and writes
// the new one in a single transaction. A per-user advisory lock held for the
// transaction keeps concurrent ingests from interleaving their deletes and
// inserts.
func (r *PGRepo) Replace(ctx context.Context, rec NewResume) (Resume, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Resume{}, err
	}
	defer tx.Rollback()

	if err := lockUserTx(ctx, tx, rec.UserID); err != nil {
		return Resume{}, err
	}
	if _, err := deleteGraphTx(ctx, tx, rec.UserID); err != nil {
		return Resume{}, err
	}

	const insertResume = `
INSERT INTO resumes (id, user_id, storage_key, file_name, resume_text, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertResume,
		rec.ID, rec.UserID, rec.StorageKey, rec.FileName, rec.Text, rec.CreatedAt); err != nil {
		return Resume{}, fmt.Errorf("insert resume: %w", err)
	}

	if err := insertGraphTx(ctx, tx, rec); err != nil {
		return Resume{}, err
	}
	if err := tx.Commit(); err != nil {
		return Resume{}, err
	}

	return Resume{
		ID:         rec.ID,
		UserID:     rec.UserID,
		StorageKey: rec.StorageKey,
		FileName:   rec.FileName,
		Text:       rec.Text,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

// CurrentByUser returns the user's newest resume.
func (r *PGRepo) CurrentByUser(ctx context.Context, userID string) (Resume, error) {
	const query = `
SELECT id, user_id, storage_key, file_name, resume_text, created_at
FROM resumes
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1`
	var res Resume
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&res.ID, &res.UserID, &res.StorageKey, &res.FileName, &res.Text, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, err
	}
	return res, nil
}

// DeleteByUser removes every resume the user owns along with the dependent
// graph, returning the storage keys of the removed blobs.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockUserTx(ctx, tx, userID); err != nil {
		return nil, err
	}
	keys, err := deleteGraphTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return keys, nil
}

// lockUserTx takes a transaction-scoped advisory lock on the user so that
// two connections replacing the same user's resume serialize instead of
// deadlocking on the child-table deletes.
func lockUserTx(ctx context.Context, tx *sql.Tx, userID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("lock user %s: %w", userID, err)
	}
	return nil
}

// deleteGraphTx removes the user's resumes and all dependent rows. Children
// go first since the schema has no cascading deletes; shared dimension rows
// (skills, companies, schools, locations) are left alone because other
// resumes may reference them.
func deleteGraphTx(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT storage_key FROM resumes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list storage keys: %w", err)
	}
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	children := []string{"skill_links", "educations", "experiences", "projects", "summaries", "profiles", "user_infos"}
	for _, table := range children {
		q := fmt.Sprintf(`DELETE FROM %s WHERE resume_id IN (SELECT id FROM resumes WHERE user_id = $1)`, table)
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return nil, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM resumes WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("delete resumes: %w", err)
	}
	return keys, nil
}

func insertGraphTx(ctx context.Context, tx *sql.Tx, rec NewResume) error {
	parsed := rec.Parsed

	var locationID sql.NullInt64
	if city, state := splitCityState(parsed.Header.Address); city != "" {
		loc, err := reconcileLocationTx(ctx, tx, city, state, "US")
		if err != nil {
			return err
		}
		locationID = sql.NullInt64{Int64: loc.ID, Valid: true}
	}

	const insertUserInfo = `
INSERT INTO user_infos (resume_id, fname, lname, contact_email, phone_number, location_id)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertUserInfo,
		rec.ID, parsed.Header.FirstName, parsed.Header.LastName,
		parsed.Header.Email, parsed.Header.Phone, locationID); err != nil {
		return fmt.Errorf("insert user info: %w", err)
	}

	const insertProfile = `
INSERT INTO profiles (resume_id, network, username, url)
VALUES ($1, $2, $3, $4)`
	for _, link := range parsed.Header.Links {
		if _, err := tx.ExecContext(ctx, insertProfile,
			rec.ID, link.Network, link.Username, link.URL); err != nil {
			return fmt.Errorf("insert profile %s: %w", link.Network, err)
		}
	}

	if parsed.Summary != "" {
		const insertSummary = `INSERT INTO summaries (resume_id, summary) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, insertSummary, rec.ID, parsed.Summary); err != nil {
			return fmt.Errorf("insert summary: %w", err)
		}
	}

	const insertProject = `
INSERT INTO projects (resume_id, title, description, date_completed, links, roles)
VALUES ($1, $2, $3, $4, $5, $6)`
	for _, proj := range parsed.Projects {
		links, err := marshalStringArray(proj.Links)
		if err != nil {
			return err
		}
		roles, err := marshalStringArray(proj.Roles)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertProject,
			rec.ID, proj.Title, proj.Description, nullableTime(proj.DateCompleted), links, roles); err != nil {
			return fmt.Errorf("insert project %q: %w", proj.Title, err)
		}
	}

	const insertExperience = `
INSERT INTO experiences (resume_id, company_id, title, description, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6)`
	for _, exp := range parsed.Experience {
		var companyID sql.NullInt64
		if exp.Company != "" {
			company, err := reconcileCompanyTx(ctx, tx, exp.Company)
			if err != nil {
				return err
			}
			companyID = sql.NullInt64{Int64: company.ID, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insertExperience,
			rec.ID, companyID, exp.Position, exp.Summary,
			nullableTime(exp.StartDate), nullableTime(exp.EndDate)); err != nil {
			return fmt.Errorf("insert experience %q: %w", exp.Position, err)
		}
	}

	const insertEducation = `
INSERT INTO educations (resume_id, school_id, url, area, study_type, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, edu := range parsed.Education {
		if edu.Institution == "" {
			continue
		}
		school, err := reconcileSchoolTx(ctx, tx, edu.Institution)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertEducation,
			rec.ID, school.ID, edu.URL, edu.Area, edu.StudyType,
			nullableTime(edu.StartDate), nullableTime(edu.EndDate)); err != nil {
			return fmt.Errorf("insert education %q: %w", edu.Institution, err)
		}
	}

	const insertSkillLink = `INSERT INTO skill_links (resume_id, skill_id) VALUES ($1, $2)`
	for _, skill := range parsed.Skills {
		rec2, err := reconcileSkillTx(ctx, tx, skill)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertSkillLink, rec.ID, rec2.ID); err != nil {
			return fmt.Errorf("link skill %q: %w", skill, err)
		}
	}

	return nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// marshalStringArray renders a slice for a JSONB column. A nil slice becomes
// the empty array, never jsonb null; readers always see a list.
func marshalStringArray(v []string) ([]byte, error) {
	if len(v) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}
