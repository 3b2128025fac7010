package repository

import (
	"context"
	"database/sql"
	"time"
)

type ReviewCycle struct {
	ID        string
	Name      string
	Status    string
	OpensAt   time.Time
	ClosesAt  time.Time
	CreatedAt time.Time
}

type Assessment struct {
	ID          string
	MemberID    string
	CycleID     string
	Status      string
	Summary     *string
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AssessmentItem struct {
	ID           string
	AssessmentID string
	Criterion    string
	Score        string // numeric(4,2), handled as decimal by the service layer
	Comment      *string
	Position     int
}

type AssessmentRepository interface {
	CreateCycle(ctx context.Context, cycle *ReviewCycle) error
	FindCycleByID(ctx context.Context, id string) (*ReviewCycle, error)
	FindOpenCycle(ctx context.Context) (*ReviewCycle, error)
	FindAllCycles(ctx context.Context) ([]*ReviewCycle, error)
	UpdateCycleStatus(ctx context.Context, cycleID, status string) error
	FindCyclesClosingBefore(ctx context.Context, deadline time.Time) ([]*ReviewCycle, error)

	Create(ctx context.Context, assessment *Assessment) error
	FindByID(ctx context.Context, id string) (*Assessment, error)
	FindByMemberAndCycle(ctx context.Context, memberID, cycleID string) (*Assessment, error)
	FindByCycle(ctx context.Context, cycleID string) ([]*Assessment, error)
	Update(ctx context.Context, assessment *Assessment) error
	Delete(ctx context.Context, id string) error

	ReplaceItems(ctx context.Context, assessmentID string, items []*AssessmentItem) error
	FindItems(ctx context.Context, assessmentID string) ([]*AssessmentItem, error)

	MemberIDsWithoutSubmission(ctx context.Context, cycleID string) ([]string, error)
}

type sqlAssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) AssessmentRepository {
	return &sqlAssessmentRepository{db: db}
}

func (r *sqlAssessmentRepository) CreateCycle(ctx context.Context, cycle *ReviewCycle) error {
	query := `
		INSERT INTO review_cycles (name, status, opens_at, closes_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if cycle.Status == "" {
		cycle.Status = "planned"
	}
	return r.db.QueryRowContext(ctx, query, cycle.Name, cycle.Status, cycle.OpensAt, cycle.ClosesAt).
		Scan(&cycle.ID, &cycle.CreatedAt)
}

func (r *sqlAssessmentRepository) scanCycle(row *sql.Row) (*ReviewCycle, error) {
	c := &ReviewCycle{}
	err := row.Scan(&c.ID, &c.Name, &c.Status, &c.OpensAt, &c.ClosesAt, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *sqlAssessmentRepository) FindCycleByID(ctx context.Context, id string) (*ReviewCycle, error) {
	query := `SELECT id, name, status, opens_at, closes_at, created_at FROM review_cycles WHERE id = $1`
	return r.scanCycle(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqlAssessmentRepository) FindOpenCycle(ctx context.Context) (*ReviewCycle, error) {
	query := `
		SELECT id, name, status, opens_at, closes_at, created_at
		FROM review_cycles WHERE status = 'open'
		ORDER BY closes_at LIMIT 1
	`
	return r.scanCycle(r.db.QueryRowContext(ctx, query))
}

func (r *sqlAssessmentRepository) FindAllCycles(ctx context.Context) ([]*ReviewCycle, error) {
	query := `SELECT id, name, status, opens_at, closes_at, created_at FROM review_cycles ORDER BY opens_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []*ReviewCycle
	for rows.Next() {
		c := &ReviewCycle{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.OpensAt, &c.ClosesAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (r *sqlAssessmentRepository) UpdateCycleStatus(ctx context.Context, cycleID, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE review_cycles SET status = $2 WHERE id = $1`, cycleID, status)
	return err
}

func (r *sqlAssessmentRepository) FindCyclesClosingBefore(ctx context.Context, deadline time.Time) ([]*ReviewCycle, error) {
	query := `
		SELECT id, name, status, opens_at, closes_at, created_at
		FROM review_cycles
		WHERE status = 'open' AND closes_at <= $1
		ORDER BY closes_at
	`
	rows, err := r.db.QueryContext(ctx, query, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []*ReviewCycle
	for rows.Next() {
		c := &ReviewCycle{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.OpensAt, &c.ClosesAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (r *sqlAssessmentRepository) Create(ctx context.Context, assessment *Assessment) error {
	query := `
		INSERT INTO assessments (member_id, cycle_id, status, summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if assessment.Status == "" {
		assessment.Status = "draft"
	}
	return r.db.QueryRowContext(ctx, query,
		assessment.MemberID, assessment.CycleID, assessment.Status, assessment.Summary,
	).Scan(&assessment.ID, &assessment.CreatedAt, &assessment.UpdatedAt)
}

func (r *sqlAssessmentRepository) scanAssessment(row *sql.Row) (*Assessment, error) {
	a := &Assessment{}
	err := row.Scan(&a.ID, &a.MemberID, &a.CycleID, &a.Status, &a.Summary, &a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *sqlAssessmentRepository) FindByID(ctx context.Context, id string) (*Assessment, error) {
	query := `
		SELECT id, member_id, cycle_id, status, summary, submitted_at, created_at, updated_at
		FROM assessments WHERE id = $1
	`
	return r.scanAssessment(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqlAssessmentRepository) FindByMemberAndCycle(ctx context.Context, memberID, cycleID string) (*Assessment, error) {
	query := `
		SELECT id, member_id, cycle_id, status, summary, submitted_at, created_at, updated_at
		FROM assessments WHERE member_id = $1 AND cycle_id = $2
	`
	return r.scanAssessment(r.db.QueryRowContext(ctx, query, memberID, cycleID))
}

func (r *sqlAssessmentRepository) FindByCycle(ctx context.Context, cycleID string) ([]*Assessment, error) {
	query := `
		SELECT id, member_id, cycle_id, status, summary, submitted_at, created_at, updated_at
		FROM assessments WHERE cycle_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []*Assessment
	for rows.Next() {
		a := &Assessment{}
		if err := rows.Scan(&a.ID, &a.MemberID, &a.CycleID, &a.Status, &a.Summary, &a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

func (r *sqlAssessmentRepository) Update(ctx context.Context, assessment *Assessment) error {
	query := `
		UPDATE assessments
		SET status = $2, summary = $3, submitted_at = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		assessment.ID, assessment.Status, assessment.Summary, assessment.SubmittedAt,
	).Scan(&assessment.UpdatedAt)
}

func (r *sqlAssessmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	return err
}

// ReplaceItems swaps the full item list in one transaction; drafts are
// edited as a whole in the UI.
func (r *sqlAssessmentRepository) ReplaceItems(ctx context.Context, assessmentID string, items []*AssessmentItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assessment_items WHERE assessment_id = $1`, assessmentID); err != nil {
		return err
	}
	for i, item := range items {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO assessment_items (assessment_id, criterion, score, comment, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, assessmentID, item.Criterion, item.Score, item.Comment, i).Scan(&item.ID)
		if err != nil {
			return err
		}
		item.AssessmentID = assessmentID
		item.Position = i
	}
	return tx.Commit()
}

func (r *sqlAssessmentRepository) FindItems(ctx context.Context, assessmentID string) ([]*AssessmentItem, error) {
	query := `
		SELECT id, assessment_id, criterion, score, comment, position
		FROM assessment_items WHERE assessment_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*AssessmentItem
	for rows.Next() {
		item := &AssessmentItem{}
		if err := rows.Scan(&item.ID, &item.AssessmentID, &item.Criterion, &item.Score, &item.Comment, &item.Position); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MemberIDsWithoutSubmission lists active members with no submitted
// assessment in the cycle; the cron reminder runs off this.
func (r *sqlAssessmentRepository) MemberIDsWithoutSubmission(ctx context.Context, cycleID string) ([]string, error) {
	query := `
		SELECT m.id
		FROM members m
		WHERE m.status = 'active'
		AND NOT EXISTS (
			SELECT 1 FROM assessments a
			WHERE a.member_id = m.id AND a.cycle_id = $1 AND a.status <> 'draft'
		)
	`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
