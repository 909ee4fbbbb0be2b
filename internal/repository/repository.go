package repository

import (
	"context"
	"errors"

	"github.com/rmatsuoka/gameserver/internal/domain"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrTokenExists    = errors.New("token already exists")
	ErrAlreadyJoined  = errors.New("user already joined the room")
	ErrMemberNotFound = errors.New("room member not found")
)

// UserRepository is the user directory: opaque tokens in, profiles out.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User, token string) error
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// RoomRepository is the storage boundary of the room lifecycle.
//
// Check-then-act sequences (join, leave) must run inside Transaction with the
// room row locked via GetForUpdate, so that two concurrent joiners can never
// both pass the capacity check. Methods called outside a transaction are
// individually atomic.
type RoomRepository interface {
	Transaction(ctx context.Context, fn func(RoomRepository) error) error

	CreateRoom(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, roomID int64) (*domain.Room, error)
	GetForUpdate(ctx context.Context, roomID int64) (*domain.Room, error)
	ListWaiting(ctx context.Context, liveID int64) ([]domain.RoomInfo, error)
	SetStatus(ctx context.Context, roomID int64, status domain.RoomStatus) error
	SetOwner(ctx context.Context, roomID, ownerID int64) error

	AddMember(ctx context.Context, roomID, userID int64, difficulty domain.LiveDifficulty) error
	RemoveMember(ctx context.Context, roomID, userID int64) error
	CountMembers(ctx context.Context, roomID int64) (int, error)
	ListMembers(ctx context.Context, roomID int64) ([]domain.RoomMember, error)

	SaveResult(ctx context.Context, roomID, userID int64, judgeCountList []int, score int) error
	ListResults(ctx context.Context, roomID int64) ([]domain.ResultUser, error)
}
