package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryInsert_AssignsSequentialIDs(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	a, err := repo.Insert(ctx, &User{Username: "a", Email: "a@x.com"})
	require.NoError(t, err)
	b, err := repo.Insert(ctx, &User{Username: "b", Email: "b@x.com"})
	require.NoError(t, err)

	require.Equal(t, int64(1), a.ID)
	require.Equal(t, int64(2), b.ID)
	require.False(t, a.CreatedAt.IsZero())
}

func TestInMemoryIDsNeverReused(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	a, err := repo.Insert(ctx, &User{Username: "a", Email: "a@x.com"})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	b, err := repo.Insert(ctx, &User{Username: "b", Email: "b@x.com"})
	require.NoError(t, err)
	require.Greater(t, b.ID, a.ID)
}

func TestInMemoryFindByUsernameOrEmail_PrefersUsernameMatch(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Insert(ctx, &User{Username: "alice", Email: "alice@x.com"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &User{Username: "bob", Email: "bob@x.com"})
	require.NoError(t, err)

	// Username matches one account, email matches another; the username
	// match must win.
	u, err := repo.FindByUsernameOrEmail(ctx, "bob", "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, "bob", u.Username)
}

func TestInMemoryUpdate_RejectsTakenCredentials(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Insert(ctx, &User{Username: "alice", Email: "alice@x.com"})
	require.NoError(t, err)
	bob, err := repo.Insert(ctx, &User{Username: "bob", Email: "bob@x.com"})
	require.NoError(t, err)

	err = repo.Update(ctx, &User{ID: bob.ID, Username: "alice", Email: "bob@x.com"})

	var dup *DuplicateCredentialError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, FieldUsername, dup.Field)
}
