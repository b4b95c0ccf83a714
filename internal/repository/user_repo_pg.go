package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/domora/internal/domain"
)

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, email, full_name, role, password_hash, is_active, phone, created_at, updated_at`

func (r *PGUserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.FullName, u.Role, u.PasswordHash, u.IsActive, u.Phone, u.CreatedAt, u.UpdatedAt)
	return wrapPG(err, "user with email %q", u.Email)
}

func (r *PGUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	u, err := scanUser(row)
	return u, wrapPG(err, "user %q", id)
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	u, err := scanUser(row)
	return u, wrapPG(err, "user with email %q", email)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.IsActive, &u.Phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
