package service

import (
	"context"

	"github.com/rmatsuoka/gameserver/internal/domain"
)

type UserInteractor interface {
	CreateUser(ctx context.Context, name string, leaderCardID int64) (string, error)
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)
	UpdateUser(ctx context.Context, token, name string, leaderCardID int64) error
}

type RoomInteractor interface {
	CreateRoom(ctx context.Context, token string, liveID int64, difficulty domain.LiveDifficulty) (int64, error)
	ListRooms(ctx context.Context, liveID int64) ([]domain.RoomInfo, error)
	JoinRoom(ctx context.Context, token string, roomID int64, difficulty domain.LiveDifficulty) (domain.JoinRoomResult, error)
	WaitRoom(ctx context.Context, token string, roomID int64) (domain.RoomStatus, []domain.RoomMember, error)
	StartRoom(ctx context.Context, token string, roomID int64) error
	EndRoom(ctx context.Context, token string, roomID int64, judgeCountList []int, score int) error
	ResultRoom(ctx context.Context, roomID int64) ([]domain.ResultUser, error)
	LeaveRoom(ctx context.Context, token string, roomID int64) error
}
