package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"chyrp/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a domain.UserRepository implemented with Postgres.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userSelect = `
	SELECT u.id, u.login, u.email, u.full_name, u.hashed_password, u.salt, u.is_active, u.group_id, u.joined_at,
	       g.id, g.name, g.permissions
	FROM users u
	JOIN groups g ON g.id = u.group_id
`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (login, email, full_name, hashed_password, salt, is_active, group_id, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Login, u.Email, nullString(u.FullName), u.HashedPassword, u.Salt, u.IsActive, u.GroupID, u.JoinedAt,
	).Scan(&u.ID)
	return mapError(err, "user")
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, userSelect+`WHERE u.id = $1`, id)
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.getOne(ctx, userSelect+`WHERE u.login = $1`, login)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, userSelect+`WHERE lower(u.email) = lower($1)`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{Group: &domain.Group{}}
	var fullName sql.NullString
	var perms []string
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Login, &u.Email, &fullName, &u.HashedPassword, &u.Salt, &u.IsActive, &u.GroupID, &u.JoinedAt,
		&u.Group.ID, &u.Group.Name, pq.Array(&perms),
	)
	if err != nil {
		return nil, mapError(err, "user")
	}
	u.FullName = fullName.String
	u.Group.Permissions = toPermissions(perms)
	return u, nil
}

func toPermissions(ss []string) []domain.Permission {
	perms := make([]domain.Permission, len(ss))
	for i, s := range ss {
		perms[i] = domain.Permission(s)
	}
	return perms
}

func fromPermissions(perms []domain.Permission) []string {
	ss := make([]string, len(perms))
	for i, p := range perms {
		ss[i] = string(p)
	}
	return ss
}
