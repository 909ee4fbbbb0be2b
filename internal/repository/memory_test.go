package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmatsuoka/gameserver/internal/domain"
	"github.com/rmatsuoka/gameserver/internal/repository"
)

func newRepos(t *testing.T) (*repository.InMemoryRoomRepository, *repository.InMemoryUserRepository) {
	t.Helper()
	users := repository.NewInMemoryUserRepository()
	return repository.NewInMemoryRoomRepository(users), users
}

func TestInMemoryUserRepository(t *testing.T) {
	_, users := newRepos(t)
	ctx := context.Background()

	user := &domain.User{Name: "alice", LeaderCardID: 3}
	require.NoError(t, users.Create(ctx, user, "token-a"))
	require.NotZero(t, user.ID)

	err := users.Create(ctx, &domain.User{Name: "bob"}, "token-a")
	assert.ErrorIs(t, err, repository.ErrTokenExists)

	got, err := users.GetByToken(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Name)

	_, err = users.GetByToken(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	got.Name = "alicia"
	require.NoError(t, users.Update(ctx, got))
	updated, err := users.GetByToken(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Name)

	err = users.Update(ctx, &domain.User{ID: 999, Name: "ghost"})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestInMemoryRoomMembership(t *testing.T) {
	rooms, users := newRepos(t)
	ctx := context.Background()

	owner := &domain.User{Name: "owner"}
	require.NoError(t, users.Create(ctx, owner, "t1"))

	room := &domain.Room{LiveID: 5, Status: domain.StatusWaiting, OwnerID: owner.ID}
	require.NoError(t, rooms.CreateRoom(ctx, room))
	require.NotZero(t, room.ID)

	require.NoError(t, rooms.AddMember(ctx, room.ID, owner.ID, domain.DifficultyNormal))
	err := rooms.AddMember(ctx, room.ID, owner.ID, domain.DifficultyHard)
	assert.ErrorIs(t, err, repository.ErrAlreadyJoined)

	count, err := rooms.CountMembers(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	members, err := rooms.ListMembers(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "owner", members[0].Name)
	assert.Equal(t, domain.DifficultyNormal, members[0].SelectDifficulty)

	err = rooms.RemoveMember(ctx, room.ID, 999)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)
	require.NoError(t, rooms.RemoveMember(ctx, room.ID, owner.ID))

	count, err = rooms.CountMembers(ctx, room.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInMemoryRoomResults(t *testing.T) {
	rooms, users := newRepos(t)
	ctx := context.Background()

	player := &domain.User{Name: "player"}
	require.NoError(t, users.Create(ctx, player, "t1"))

	room := &domain.Room{LiveID: 5, Status: domain.StatusWaiting, OwnerID: player.ID}
	require.NoError(t, rooms.CreateRoom(ctx, room))
	require.NoError(t, rooms.AddMember(ctx, room.ID, player.ID, domain.DifficultyNormal))

	results, err := rooms.ListResults(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, results)

	err = rooms.SaveResult(ctx, room.ID, 999, []int{1}, 10)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)

	require.NoError(t, rooms.SaveResult(ctx, room.ID, player.ID, []int{9, 8, 7}, 1234))

	results, err = rooms.ListResults(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, player.ID, results[0].UserID)
	assert.Equal(t, []int{9, 8, 7}, results[0].JudgeCountList)
	assert.Equal(t, 1234, results[0].Score)
}

func TestInMemoryRoomTransactionSerializes(t *testing.T) {
	rooms, users := newRepos(t)
	ctx := context.Background()

	owner := &domain.User{Name: "owner"}
	require.NoError(t, users.Create(ctx, owner, "t1"))

	room := &domain.Room{LiveID: 5, Status: domain.StatusWaiting, OwnerID: owner.ID}
	err := rooms.Transaction(ctx, func(r repository.RoomRepository) error {
		if err := r.CreateRoom(ctx, room); err != nil {
			return err
		}
		return r.AddMember(ctx, room.ID, owner.ID, domain.DifficultyNormal)
	})
	require.NoError(t, err)

	got, err := rooms.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, got.Status)

	count, err := rooms.CountMembers(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInMemoryListWaiting(t *testing.T) {
	rooms, users := newRepos(t)
	ctx := context.Background()

	owner := &domain.User{Name: "owner"}
	require.NoError(t, users.Create(ctx, owner, "t1"))

	waiting := &domain.Room{LiveID: 5, Status: domain.StatusWaiting, OwnerID: owner.ID}
	require.NoError(t, rooms.CreateRoom(ctx, waiting))
	require.NoError(t, rooms.AddMember(ctx, waiting.ID, owner.ID, domain.DifficultyNormal))

	// a waiting room with no members is invisible
	empty := &domain.Room{LiveID: 5, Status: domain.StatusWaiting, OwnerID: owner.ID}
	require.NoError(t, rooms.CreateRoom(ctx, empty))

	started := &domain.Room{LiveID: 5, Status: domain.StatusLiveStart, OwnerID: owner.ID}
	require.NoError(t, rooms.CreateRoom(ctx, started))
	require.NoError(t, rooms.AddMember(ctx, started.ID, owner.ID, domain.DifficultyNormal))

	infos, err := rooms.ListWaiting(ctx, 5)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, waiting.ID, infos[0].RoomID)
}
