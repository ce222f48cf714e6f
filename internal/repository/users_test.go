package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/vendor-outreach/internal/entity"
)

func userRow(email, name, role string) func(dest ...any) error {
	return func(dest ...any) error {
		now := time.Now()
		*dest[0].(*uuid.UUID) = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
		*dest[1].(*string) = email
		*dest[2].(*string) = name
		*dest[3].(*string) = "hashed"
		*dest[4].(*string) = role
		*dest[5].(*time.Time) = now
		*dest[6].(*time.Time) = now
		return nil
	}
}

func errRow(err error) *stubPool {
	return &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return err }}
		},
	}
}

func TestPGXUsersRepository_FindByEmail(t *testing.T) {
	var gotQuery string
	repo := &PGXUsersRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotQuery = query
			return &stubRow{scan: userRow("sam@example.com", "Sam & Alex", entity.RolePlanner)}
		},
	}}

	user, err := repo.FindByEmail(context.Background(), "Sam@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Sam & Alex" || user.Role != entity.RolePlanner {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !strings.Contains(gotQuery, "LOWER(email) = LOWER($1)") {
		t.Fatalf("expected case-insensitive lookup, got %q", gotQuery)
	}

	repo.pool = errRow(pgx.ErrNoRows)
	if _, err := repo.FindByEmail(context.Background(), "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPGXUsersRepository_Create(t *testing.T) {
	var gotArgs []any
	repo := &PGXUsersRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotArgs = args
			return &stubRow{scan: userRow("sam@example.com", "", entity.RolePlanner)}
		},
	}}

	if _, err := repo.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil user")
	}

	user, err := repo.Create(context.Background(), &entity.User{Email: "sam@example.com", PasswordHash: "hashed", Role: entity.RolePlanner})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "sam@example.com" {
		t.Fatalf("expected created user, got %+v", user)
	}
	if len(gotArgs) != 4 || gotArgs[1] != nil {
		t.Fatalf("expected a blank name to be stored as NULL, got %v", gotArgs)
	}

	repo.pool = errRow(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"})
	if _, err := repo.Create(context.Background(), &entity.User{Email: "sam@example.com"}); !errors.Is(err, ErrEmailDuplicate) {
		t.Fatalf("expected ErrEmailDuplicate, got %v", err)
	}
}

func TestPGXUsersRepository_List(t *testing.T) {
	repo := &PGXUsersRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{scans: []func(dest ...any) error{
				userRow("admin@example.com", "", entity.RoleAdmin),
				userRow("sam@example.com", "Sam & Alex", entity.RolePlanner),
			}}, nil
		},
	}}

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[1].Name != "Sam & Alex" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestPGXUsersRepository_Update(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	repo := &PGXUsersRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotQuery, gotArgs = query, args
			return &stubRow{scan: userRow("sam@example.com", "Sam & Alex", entity.RoleAdmin)}
		},
	}}

	name := "Sam & Alex"
	role := entity.RoleAdmin
	id := uuid.New()
	if _, err := repo.Update(context.Background(), id, UserPatch{Name: &name, Role: &role}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "name = $1, role = $2, updated_at = NOW() WHERE id = $3") {
		t.Fatalf("unexpected update query: %q", gotQuery)
	}
	if len(gotArgs) != 3 || gotArgs[2] != id {
		t.Fatalf("unexpected args: %v", gotArgs)
	}

	gotQuery = ""
	if _, err := repo.Update(context.Background(), id, UserPatch{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gotQuery, "UPDATE") {
		t.Fatalf("expected an empty patch to read the current row, got %q", gotQuery)
	}

	repo.pool = errRow(pgx.ErrNoRows)
	if _, err := repo.Update(context.Background(), id, UserPatch{Role: &role}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPGXUsersRepository_Delete(t *testing.T) {
	tests := map[string]struct {
		tag     string
		execErr error
		want    error
	}{
		"deleted":   {tag: "DELETE 1"},
		"not found": {tag: "DELETE 0", want: ErrUserNotFound},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &PGXUsersRepository{pool: &stubPool{
				execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
					return pgconn.NewCommandTag(tt.tag), tt.execErr
				},
			}}
			if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	pool := &stubPool{}
	repo := &PGXUsersRepository{pool: pool}
	if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on an empty table, got %v", err)
	}
	if len(pool.sql) != 1 || !strings.Contains(pool.sql[0], "DELETE FROM users") {
		t.Fatalf("unexpected statements: %q", pool.sql)
	}
}
