package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Role struct {
	ID          string
	Name        string
	Description *string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	FindByID(ctx context.Context, id string) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindAll(ctx context.Context) ([]*Role, error)
	FindByMember(ctx context.Context, memberID string) ([]*Role, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, memberID, roleID string) error
	Unassign(ctx context.Context, memberID, roleID string) error
	MemberHasPermission(ctx context.Context, memberID, permission string) (bool, error)
}

type pgRoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &pgRoleRepository{pool: pool}
}

func (r *pgRoleRepository) Create(ctx context.Context, role *Role) error {
	query := `
		INSERT INTO roles (name, description, permissions)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, role.Name, role.Description, role.Permissions).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *pgRoleRepository) scanRole(row pgx.Row) (*Role, error) {
	role := &Role{}
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *pgRoleRepository) FindByID(ctx context.Context, id string) (*Role, error) {
	query := `SELECT id, name, description, permissions, created_at, updated_at FROM roles WHERE id = $1`
	return r.scanRole(r.pool.QueryRow(ctx, query, id))
}

func (r *pgRoleRepository) FindByName(ctx context.Context, name string) (*Role, error) {
	query := `SELECT id, name, description, permissions, created_at, updated_at FROM roles WHERE LOWER(name) = LOWER($1)`
	return r.scanRole(r.pool.QueryRow(ctx, query, name))
}

func (r *pgRoleRepository) FindAll(ctx context.Context) ([]*Role, error) {
	query := `SELECT id, name, description, permissions, created_at, updated_at FROM roles ORDER BY name`
	return r.queryRoles(ctx, query)
}

func (r *pgRoleRepository) FindByMember(ctx context.Context, memberID string) ([]*Role, error) {
	query := `
		SELECT r.id, r.name, r.description, r.permissions, r.created_at, r.updated_at
		FROM roles r
		JOIN member_roles mr ON mr.role_id = r.id
		WHERE mr.member_id = $1
		ORDER BY r.name
	`
	return r.queryRoles(ctx, query, memberID)
}

func (r *pgRoleRepository) queryRoles(ctx context.Context, query string, args ...interface{}) ([]*Role, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		role := &Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.Permissions, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *pgRoleRepository) Update(ctx context.Context, role *Role) error {
	query := `
		UPDATE roles SET name = $2, description = $3, permissions = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query, role.ID, role.Name, role.Description, role.Permissions).
		Scan(&role.UpdatedAt)
}

func (r *pgRoleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return err
}

func (r *pgRoleRepository) Assign(ctx context.Context, memberID, roleID string) error {
	query := `
		INSERT INTO member_roles (member_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, memberID, roleID)
	return err
}

func (r *pgRoleRepository) Unassign(ctx context.Context, memberID, roleID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM member_roles WHERE member_id = $1 AND role_id = $2`, memberID, roleID)
	return err
}

func (r *pgRoleRepository) MemberHasPermission(ctx context.Context, memberID, permission string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM member_roles mr
			JOIN roles r ON r.id = mr.role_id
			WHERE mr.member_id = $1 AND $2 = ANY(r.permissions)
		)
	`
	var has bool
	err := r.pool.QueryRow(ctx, query, memberID, permission).Scan(&has)
	return has, err
}
