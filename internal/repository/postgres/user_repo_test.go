package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"chyrp/internal/domain"
)

var userColumns = []string{
	"id", "login", "email", "full_name", "hashed_password", "salt", "is_active", "group_id", "joined_at",
	"g_id", "name", "permissions",
}

func TestUserRepository_GetByLogin(t *testing.T) {
	ctx := context.Background()
	joined := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		login   string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.User
		wantErr error
	}{
		{
			name:  "found with group permissions",
			login: "alice",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE u.login = \$1`).
					WithArgs("alice").
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow(int64(1), "alice", "alice@example.com", "Alice", "hash", "salt", true, int64(2), joined,
							int64(2), "Member", "{add_post,like_post}"))
			},
			want: &domain.User{
				ID: 1, Login: "alice", Email: "alice@example.com", FullName: "Alice",
				HashedPassword: "hash", Salt: "salt", IsActive: true, GroupID: 2, JoinedAt: joined,
				Group: &domain.Group{ID: 2, Name: "Member", Permissions: []domain.Permission{domain.PermAddPost, domain.PermLikePost}},
			},
		},
		{
			name:  "not found",
			login: "ghost",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE u.login = \$1`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			got, err := NewUserRepository(db).GetByLogin(ctx, tt.login)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	joined := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("bob", "bob@example.com", nil, "hash", "salt", true, int64(2), joined).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
			},
		},
		{
			name: "unique violation returns ErrConflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			u := &domain.User{Login: "bob", Email: "bob@example.com", HashedPassword: "hash", Salt: "salt", IsActive: true, GroupID: 2, JoinedAt: joined}
			err = NewUserRepository(db).Create(ctx, u)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, int64(9), u.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGroupRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO groups \(name, permissions\)`).
		WithArgs("Editors", pq.Array([]string{"edit_post"})).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	g := &domain.Group{Name: "Editors", Permissions: []domain.Permission{domain.PermEditPost}}
	require.NoError(t, NewGroupRepository(db).Create(context.Background(), g))
	require.Equal(t, int64(3), g.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
