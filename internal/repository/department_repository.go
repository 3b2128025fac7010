package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Stage struct {
	ID        string
	Name      string
	Position  int
	CreatedAt time.Time
}

type DepartmentRepository interface {
	Create(ctx context.Context, department *Department) error
	FindByID(ctx context.Context, id string) (*Department, error)
	FindAll(ctx context.Context) ([]*Department, error)
	Update(ctx context.Context, department *Department) error
	Delete(ctx context.Context, id string) error
	FindAllStages(ctx context.Context) ([]*Stage, error)
	CreateStage(ctx context.Context, stage *Stage) error
}

type pgDepartmentRepository struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &pgDepartmentRepository{pool: pool}
}

func (r *pgDepartmentRepository) Create(ctx context.Context, department *Department) error {
	query := `
		INSERT INTO departments (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, department.Name).
		Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
}

func (r *pgDepartmentRepository) FindByID(ctx context.Context, id string) (*Department, error) {
	query := `SELECT id, name, created_at, updated_at FROM departments WHERE id = $1`
	d := &Department{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *pgDepartmentRepository) FindAll(ctx context.Context) ([]*Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []*Department
	for rows.Next() {
		d := &Department{}
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *pgDepartmentRepository) Update(ctx context.Context, department *Department) error {
	query := `UPDATE departments SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, department.ID, department.Name).Scan(&department.UpdatedAt)
}

func (r *pgDepartmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	return err
}

func (r *pgDepartmentRepository) FindAllStages(ctx context.Context) ([]*Stage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, position, created_at FROM stages ORDER BY position, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []*Stage
	for rows.Next() {
		s := &Stage{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Position, &s.CreatedAt); err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *pgDepartmentRepository) CreateStage(ctx context.Context, stage *Stage) error {
	query := `INSERT INTO stages (name, position) VALUES ($1, $2) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, stage.Name, stage.Position).Scan(&stage.ID, &stage.CreatedAt)
}
