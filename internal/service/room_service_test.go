package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmatsuoka/gameserver/internal/domain"
	"github.com/rmatsuoka/gameserver/internal/repository"
	"github.com/rmatsuoka/gameserver/internal/service"
)

func newServices(t *testing.T) (*service.RoomService, *service.UserService) {
	t.Helper()

	users := repository.NewInMemoryUserRepository()
	rooms := repository.NewInMemoryRoomRepository(users)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return service.NewRoomService(rooms, users, log), service.NewUserService(users, log)
}

func createUser(t *testing.T, users *service.UserService, name string) string {
	t.Helper()

	token, err := users.CreateUser(context.Background(), name, 1)
	require.NoError(t, err)
	return token
}

func TestCreateRoomListed(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	token := createUser(t, userSvc, "alice")

	roomID, err := roomSvc.CreateRoom(ctx, token, 10, domain.DifficultyNormal)
	require.NoError(t, err)
	require.NotZero(t, roomID)

	rooms, err := roomSvc.ListRooms(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, roomID, rooms[0].RoomID)
	assert.Equal(t, int64(10), rooms[0].LiveID)
	assert.Equal(t, 1, rooms[0].JoinedUserCount)
	assert.Equal(t, domain.MaxRoomUsers, rooms[0].MaxUserCount)

	// live id 0 is the wildcard
	rooms, err = roomSvc.ListRooms(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	rooms, err = roomSvc.ListRooms(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestCreateRoomInvalidToken(t *testing.T) {
	roomSvc, _ := newServices(t)

	_, err := roomSvc.CreateRoom(context.Background(), "no-such-token", 10, domain.DifficultyNormal)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestCreateRoomInvalidDifficulty(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	token := createUser(t, userSvc, "alice")

	_, err := roomSvc.CreateRoom(context.Background(), token, 10, domain.LiveDifficulty(9))
	assert.ErrorIs(t, err, service.ErrInvalidDifficulty)
}

func TestJoinRoomUntilFull(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	for i, name := range []string{"p2", "p3", "p4"} {
		token := createUser(t, userSvc, name)
		result, err := roomSvc.JoinRoom(ctx, token, roomID, domain.DifficultyHard)
		require.NoError(t, err)
		assert.Equal(t, domain.JoinOk, result, "joiner %d", i+2)
	}

	late := createUser(t, userSvc, "late")
	result, err := roomSvc.JoinRoom(ctx, late, roomID, domain.DifficultyNormal)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRoomFull, result)
}

func TestJoinRoomConcurrent(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	const joiners = 5
	tokens := make([]string, joiners)
	for i := range tokens {
		tokens[i] = createUser(t, userSvc, "joiner")
	}

	results := make([]domain.JoinRoomResult, joiners)
	errs := make([]error, joiners)
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = roomSvc.JoinRoom(ctx, tokens[i], roomID, domain.DifficultyNormal)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	var ok, full int
	for _, r := range results {
		switch r {
		case domain.JoinOk:
			ok++
		case domain.JoinRoomFull:
			full++
		default:
			t.Fatalf("unexpected join result %d", r)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, 2, full)

	_, members, err := roomSvc.WaitRoom(ctx, owner, roomID)
	require.NoError(t, err)
	assert.Len(t, members, domain.MaxRoomUsers)
}

func TestJoinRoomMissing(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	token := createUser(t, userSvc, "alice")

	result, err := roomSvc.JoinRoom(context.Background(), token, 12345, domain.DifficultyNormal)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinOtherError, result)
}

func TestJoinRoomTwice(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	result, err := roomSvc.JoinRoom(ctx, owner, roomID, domain.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinOtherError, result)
}

func TestJoinRoomAfterStart(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)
	require.NoError(t, roomSvc.StartRoom(ctx, owner, roomID))

	token := createUser(t, userSvc, "late")
	result, err := roomSvc.JoinRoom(ctx, token, roomID, domain.DifficultyNormal)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinDisbanded, result)
}

func TestJoinRoomFullBeatsDisbanded(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	for _, name := range []string{"p2", "p3", "p4"} {
		token := createUser(t, userSvc, name)
		result, err := roomSvc.JoinRoom(ctx, token, roomID, domain.DifficultyNormal)
		require.NoError(t, err)
		require.Equal(t, domain.JoinOk, result)
	}
	require.NoError(t, roomSvc.StartRoom(ctx, owner, roomID))

	// full and started: the capacity check is answered first
	late := createUser(t, userSvc, "late")
	result, err := roomSvc.JoinRoom(ctx, late, roomID, domain.DifficultyNormal)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRoomFull, result)
}

func TestWaitRoomFlags(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	guest := createUser(t, userSvc, "guest")
	result, err := roomSvc.JoinRoom(ctx, guest, roomID, domain.DifficultyHard)
	require.NoError(t, err)
	require.Equal(t, domain.JoinOk, result)

	status, members, err := roomSvc.WaitRoom(ctx, guest, roomID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, status)
	require.Len(t, members, 2)

	var me, host int
	for _, m := range members {
		if m.IsMe {
			me++
			assert.Equal(t, "guest", m.Name)
			assert.Equal(t, domain.DifficultyHard, m.SelectDifficulty)
		}
		if m.IsHost {
			host++
			assert.Equal(t, "owner", m.Name)
		}
	}
	assert.Equal(t, 1, me)
	assert.Equal(t, 1, host)
}

func TestWaitRoomMissing(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	token := createUser(t, userSvc, "alice")

	_, _, err := roomSvc.WaitRoom(context.Background(), token, 12345)
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestStartRoomOwnerOnly(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	guest := createUser(t, userSvc, "guest")
	result, err := roomSvc.JoinRoom(ctx, guest, roomID, domain.DifficultyNormal)
	require.NoError(t, err)
	require.Equal(t, domain.JoinOk, result)

	err = roomSvc.StartRoom(ctx, guest, roomID)
	assert.ErrorIs(t, err, service.ErrNotRoomOwner)

	require.NoError(t, roomSvc.StartRoom(ctx, owner, roomID))

	status, _, err := roomSvc.WaitRoom(ctx, owner, roomID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLiveStart, status)
}

func TestStartRoomMissing(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	token := createUser(t, userSvc, "alice")

	err := roomSvc.StartRoom(context.Background(), token, 12345)
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestEndResultRoundTrip(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	guest := createUser(t, userSvc, "guest")
	result, err := roomSvc.JoinRoom(ctx, guest, roomID, domain.DifficultyNormal)
	require.NoError(t, err)
	require.Equal(t, domain.JoinOk, result)
	require.NoError(t, roomSvc.StartRoom(ctx, owner, roomID))

	// nobody finished yet
	results, err := roomSvc.ResultRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, roomSvc.EndRoom(ctx, owner, roomID, []int{1, 2, 3}, 900))

	ownerUser, err := userSvc.GetUserByToken(ctx, owner)
	require.NoError(t, err)

	results, err = roomSvc.ResultRoom(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ownerUser.ID, results[0].UserID)
	assert.Equal(t, []int{1, 2, 3}, results[0].JudgeCountList)
	assert.Equal(t, 900, results[0].Score)

	require.NoError(t, roomSvc.EndRoom(ctx, guest, roomID, []int{4, 5, 6}, 700))

	results, err = roomSvc.ResultRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestEndRoomNotMember(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	outsider := createUser(t, userSvc, "outsider")
	err = roomSvc.EndRoom(ctx, outsider, roomID, []int{1}, 100)
	assert.ErrorIs(t, err, service.ErrNotRoomMember)
}

func TestLeaveRoomPromotesEarliestJoiner(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	second := createUser(t, userSvc, "second")
	third := createUser(t, userSvc, "third")
	for _, token := range []string{second, third} {
		result, err := roomSvc.JoinRoom(ctx, token, roomID, domain.DifficultyNormal)
		require.NoError(t, err)
		require.Equal(t, domain.JoinOk, result)
	}

	require.NoError(t, roomSvc.LeaveRoom(ctx, owner, roomID))

	_, members, err := roomSvc.WaitRoom(ctx, second, roomID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		if m.Name == "second" {
			assert.True(t, m.IsHost, "earliest remaining joiner becomes host")
		} else {
			assert.False(t, m.IsHost)
		}
	}
}

func TestLeaveRoomLastMemberDissolves(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	require.NoError(t, roomSvc.LeaveRoom(ctx, owner, roomID))

	status, members, err := roomSvc.WaitRoom(ctx, owner, roomID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDissolved, status)
	assert.Empty(t, members)

	rooms, err := roomSvc.ListRooms(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	token := createUser(t, userSvc, "late")
	result, err := roomSvc.JoinRoom(ctx, token, roomID, domain.DifficultyNormal)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinDisbanded, result)
}

func TestLeaveRoomNotMember(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	outsider := createUser(t, userSvc, "outsider")
	err = roomSvc.LeaveRoom(ctx, outsider, roomID)
	assert.ErrorIs(t, err, service.ErrNotRoomMember)
}

func TestListRoomsExcludesStarted(t *testing.T) {
	roomSvc, userSvc := newServices(t)
	ctx := context.Background()

	owner := createUser(t, userSvc, "owner")
	roomID, err := roomSvc.CreateRoom(ctx, owner, 10, domain.DifficultyNormal)
	require.NoError(t, err)

	rooms, err := roomSvc.ListRooms(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	require.NoError(t, roomSvc.StartRoom(ctx, owner, roomID))

	rooms, err = roomSvc.ListRooms(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}
