package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
	"github.com/oksasatya/go-user-service/internal/domain/repository"
)

// UserRepository implements repository.UserRepository using SQLite.
// created_at is stored as Unix milliseconds.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, age, created_at) VALUES (?, ?, ?, ?)`,
		u.Name, u.Email, u.Age, u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if cerr := conflictFrom(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var (
		u       entity.User
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, age, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Age, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return &u, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, age, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		var (
			u       entity.User
			created int64
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Age, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = time.UnixMilli(created).UTC()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Update writes name, email and age. created_at is never touched.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, age = ? WHERE id = ?`,
		u.Name, u.Email, u.Age, u.ID,
	)
	if err != nil {
		if cerr := conflictFrom(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// DeleteByID is a no-op for an unknown id.
func (r *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// conflictFrom returns a ConflictError when err is a SQLite unique constraint violation.
func conflictFrom(err error) *repository.ConflictError {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "users.name") {
		return &repository.ConflictError{Field: "name"}
	}
	return &repository.ConflictError{Field: "email"}
}

var _ repository.UserRepository = (*UserRepository)(nil)
