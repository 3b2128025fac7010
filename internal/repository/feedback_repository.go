package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Feedback struct {
	ID         string
	AuthorID   string
	SubjectID  string
	CycleID    *string
	Visibility string
	Rating     *string // numeric(4,2), parsed as decimal by the service layer
	Body       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *Feedback) error
	FindByID(ctx context.Context, id string) (*Feedback, error)
	FindBySubject(ctx context.Context, subjectID string) ([]*Feedback, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*Feedback, error)
	FindBySubjectAndCycle(ctx context.Context, subjectID, cycleID string) ([]*Feedback, error)
	Update(ctx context.Context, feedback *Feedback) error
	Delete(ctx context.Context, id string) error
}

type pgFeedbackRepository struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &pgFeedbackRepository{pool: pool}
}

const feedbackSelect = `
	SELECT id, author_id, subject_id, cycle_id, visibility, rating::text, body, created_at, updated_at
	FROM feedback
`

func (r *pgFeedbackRepository) Create(ctx context.Context, feedback *Feedback) error {
	query := `
		INSERT INTO feedback (author_id, subject_id, cycle_id, visibility, rating, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if feedback.Visibility == "" {
		feedback.Visibility = "private"
	}
	return r.pool.QueryRow(ctx, query,
		feedback.AuthorID, feedback.SubjectID, feedback.CycleID,
		feedback.Visibility, feedback.Rating, feedback.Body,
	).Scan(&feedback.ID, &feedback.CreatedAt, &feedback.UpdatedAt)
}

func (r *pgFeedbackRepository) FindByID(ctx context.Context, id string) (*Feedback, error) {
	f := &Feedback{}
	err := r.pool.QueryRow(ctx, feedbackSelect+` WHERE id = $1`, id).Scan(
		&f.ID, &f.AuthorID, &f.SubjectID, &f.CycleID, &f.Visibility,
		&f.Rating, &f.Body, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *pgFeedbackRepository) FindBySubject(ctx context.Context, subjectID string) ([]*Feedback, error) {
	query := feedbackSelect + ` WHERE subject_id = $1 ORDER BY created_at DESC`
	return r.queryFeedback(ctx, query, subjectID)
}

func (r *pgFeedbackRepository) FindByAuthor(ctx context.Context, authorID string) ([]*Feedback, error) {
	query := feedbackSelect + ` WHERE author_id = $1 ORDER BY created_at DESC`
	return r.queryFeedback(ctx, query, authorID)
}

func (r *pgFeedbackRepository) FindBySubjectAndCycle(ctx context.Context, subjectID, cycleID string) ([]*Feedback, error) {
	query := feedbackSelect + ` WHERE subject_id = $1 AND cycle_id = $2 ORDER BY created_at DESC`
	return r.queryFeedback(ctx, query, subjectID, cycleID)
}

func (r *pgFeedbackRepository) queryFeedback(ctx context.Context, query string, args ...interface{}) ([]*Feedback, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Feedback
	for rows.Next() {
		f := &Feedback{}
		if err := rows.Scan(
			&f.ID, &f.AuthorID, &f.SubjectID, &f.CycleID, &f.Visibility,
			&f.Rating, &f.Body, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}

func (r *pgFeedbackRepository) Update(ctx context.Context, feedback *Feedback) error {
	query := `
		UPDATE feedback SET visibility = $2, rating = $3, body = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query, feedback.ID, feedback.Visibility, feedback.Rating, feedback.Body).
		Scan(&feedback.UpdatedAt)
}

func (r *pgFeedbackRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	return err
}
