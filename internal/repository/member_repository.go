package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Member struct {
	ID           string
	Email        string
	Password     string
	Name         string
	EmployeeCode string
	JobTitle     *string
	Status       string
	DepartmentID *string
	StageID      *string
	SupervisorID *string
	RoleIDs      []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RefreshToken struct {
	ID        string
	Token     string
	MemberID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	FindByID(ctx context.Context, id string) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
	FindAll(ctx context.Context) ([]*Member, error)
	FindByDepartment(ctx context.Context, departmentID string) ([]*Member, error)
	Search(ctx context.Context, query string) ([]*Member, error)
	Update(ctx context.Context, member *Member) error
	UpdateSupervisor(ctx context.Context, memberID string, supervisorID *string) (*Member, error)
	UpdateStatus(ctx context.Context, memberID, status string) error
	RosterVersion(ctx context.Context) (time.Time, error)
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteMemberRefreshTokens(ctx context.Context, memberID string) error
}

type pgMemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &pgMemberRepository{pool: pool}
}

const memberSelect = `
	SELECT m.id, m.email, m.password, m.name, m.employee_code, m.job_title,
	       m.status, m.department_id, m.stage_id, m.supervisor_id,
	       COALESCE(array_agg(mr.role_id::text) FILTER (WHERE mr.role_id IS NOT NULL), '{}'),
	       m.created_at, m.updated_at
	FROM members m
	LEFT JOIN member_roles mr ON mr.member_id = m.id
`

func scanMember(row pgx.Row) (*Member, error) {
	m := &Member{}
	err := row.Scan(
		&m.ID, &m.Email, &m.Password, &m.Name, &m.EmployeeCode, &m.JobTitle,
		&m.Status, &m.DepartmentID, &m.StageID, &m.SupervisorID,
		&m.RoleIDs, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMemberRepository) Create(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO members (email, password, name, employee_code, job_title, status, department_id, stage_id, supervisor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	if member.Status == "" {
		member.Status = "pending_approval"
	}
	return r.pool.QueryRow(ctx, query,
		member.Email, member.Password, member.Name, member.EmployeeCode,
		member.JobTitle, member.Status, member.DepartmentID, member.StageID, member.SupervisorID,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *pgMemberRepository) FindByID(ctx context.Context, id string) (*Member, error) {
	query := memberSelect + ` WHERE m.id = $1 GROUP BY m.id`
	return scanMember(r.pool.QueryRow(ctx, query, id))
}

func (r *pgMemberRepository) FindByEmail(ctx context.Context, email string) (*Member, error) {
	query := memberSelect + ` WHERE LOWER(m.email) = LOWER($1) GROUP BY m.id`
	return scanMember(r.pool.QueryRow(ctx, query, email))
}

func (r *pgMemberRepository) FindAll(ctx context.Context) ([]*Member, error) {
	query := memberSelect + ` GROUP BY m.id ORDER BY m.created_at, m.id`
	return r.queryMembers(ctx, query)
}

func (r *pgMemberRepository) FindByDepartment(ctx context.Context, departmentID string) ([]*Member, error) {
	query := memberSelect + ` WHERE m.department_id = $1 GROUP BY m.id ORDER BY m.created_at, m.id`
	return r.queryMembers(ctx, query, departmentID)
}

func (r *pgMemberRepository) Search(ctx context.Context, q string) ([]*Member, error) {
	query := memberSelect + `
		WHERE LOWER(m.name) LIKE LOWER($1) OR LOWER(m.email) LIKE LOWER($1) OR LOWER(m.employee_code) LIKE LOWER($1)
		GROUP BY m.id ORDER BY m.name
		LIMIT 25
	`
	return r.queryMembers(ctx, query, "%"+q+"%")
}

func (r *pgMemberRepository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]*Member, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(
			&m.ID, &m.Email, &m.Password, &m.Name, &m.EmployeeCode, &m.JobTitle,
			&m.Status, &m.DepartmentID, &m.StageID, &m.SupervisorID,
			&m.RoleIDs, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgMemberRepository) Update(ctx context.Context, member *Member) error {
	query := `
		UPDATE members
		SET name = $2, job_title = $3, status = $4, department_id = $5, stage_id = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		member.ID, member.Name, member.JobTitle, member.Status,
		member.DepartmentID, member.StageID,
	).Scan(&member.UpdatedAt)
}

// UpdateSupervisor is the idempotent single-field update the hierarchy
// editor commits through. It returns the updated record so callers can
// refresh their confirmed snapshot.
func (r *pgMemberRepository) UpdateSupervisor(ctx context.Context, memberID string, supervisorID *string) (*Member, error) {
	query := `
		UPDATE members SET supervisor_id = $2, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, memberID, supervisorID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, memberID)
}

func (r *pgMemberRepository) UpdateStatus(ctx context.Context, memberID, status string) error {
	query := `UPDATE members SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, memberID, status)
	return err
}

// RosterVersion is the updated_at watermark of the whole roster, used as
// the optimistic-concurrency token for batch reassignments.
func (r *pgMemberRepository) RosterVersion(ctx context.Context) (time.Time, error) {
	var v *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(updated_at) FROM members`).Scan(&v)
	if err != nil {
		return time.Time{}, err
	}
	if v == nil {
		return time.Time{}, nil
	}
	return *v, nil
}

func (r *pgMemberRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, member_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, token.Token, token.MemberID, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
}

func (r *pgMemberRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	query := `
		SELECT id, token, member_id, expires_at, created_at
		FROM refresh_tokens WHERE token = $1
	`
	rt := &RefreshToken{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&rt.ID, &rt.Token, &rt.MemberID, &rt.ExpiresAt, &rt.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *pgMemberRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *pgMemberRepository) DeleteMemberRefreshTokens(ctx context.Context, memberID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE member_id = $1`, memberID)
	return err
}
