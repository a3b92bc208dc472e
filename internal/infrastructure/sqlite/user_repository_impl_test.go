package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
	"github.com/oksasatya/go-user-service/internal/domain/repository"
	"github.com/oksasatya/go-user-service/internal/infrastructure/sqlite"
)

func newTestRepo(t *testing.T) *sqlite.UserRepository {
	t.Helper()
	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewUserRepository(db)
}

func newUser(name string) *entity.User {
	return &entity.User{
		Name:      name,
		Email:     name + "@example.com",
		Age:       30,
		CreatedAt: time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC),
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("alice")
	require.NoError(t, r.Create(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *u, *got)

	missing, err := r.FindByID(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_Create_Duplicates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, newUser("alice")))

	sameEmail := newUser("alice2")
	sameEmail.Email = "alice@example.com"
	err := r.Create(ctx, sameEmail)
	require.ErrorIs(t, err, repository.ErrConflict)
	var cerr *repository.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "email", cerr.Field)

	sameName := newUser("alice")
	sameName.Email = "other@example.com"
	err = r.Create(ctx, sameName)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "name", cerr.Field)

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserRepository_ConcurrentDuplicateCreate(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser(fmt.Sprintf("user%d", i))
			u.Email = "shared@example.com"
			err := r.Create(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, repository.ErrConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestUserRepository_FindAll(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	empty, err := r.FindAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, r.Create(ctx, newUser(name)))
	}
	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestUserRepository_Update(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("alice")
	require.NoError(t, r.Create(ctx, u))
	bob := newUser("bob")
	require.NoError(t, r.Create(ctx, bob))

	u.Name, u.Email, u.Age = "alicia", "alicia@example.com", 31
	// a changed createdAt must not be written
	original := u.CreatedAt
	u.CreatedAt = original.Add(time.Hour)
	require.NoError(t, r.Update(ctx, u))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Name)
	assert.Equal(t, "alicia@example.com", got.Email)
	assert.Equal(t, 31, got.Age)
	assert.Equal(t, original, got.CreatedAt)

	bob.Email = "alicia@example.com"
	require.ErrorIs(t, r.Update(ctx, bob), repository.ErrConflict)

	ghost := newUser("ghost")
	ghost.ID = 999
	require.ErrorIs(t, r.Update(ctx, ghost), repository.ErrNotFound)
}

func TestUserRepository_ExistsAndDelete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("alice")
	require.NoError(t, r.Create(ctx, u))

	ok, err := r.ExistsByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.DeleteByID(ctx, 999))
	require.NoError(t, r.DeleteByID(ctx, u.ID))

	ok, err = r.ExistsByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_SchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	ctx := context.Background()

	db, err := sqlite.New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, sqlite.NewUserRepository(db).Create(ctx, newUser("alice")))
	require.NoError(t, db.Close())

	db, err = sqlite.New(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	ok, err := sqlite.NewUserRepository(db).ExistsByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
