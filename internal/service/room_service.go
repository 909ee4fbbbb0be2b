package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rmatsuoka/gameserver/internal/domain"
	"github.com/rmatsuoka/gameserver/internal/repository"
	"github.com/rmatsuoka/gameserver/lib/logger/sl"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrNotRoomOwner      = errors.New("caller does not own the room")
	ErrNotRoomMember     = errors.New("caller is not a member of the room")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// RoomService is the room lifecycle manager. Every operation resolves the
// caller through the user directory first, then runs one atomic sequence
// against the room store.
type RoomService struct {
	rooms repository.RoomRepository
	users repository.UserRepository
	log   *slog.Logger
}

func NewRoomService(rooms repository.RoomRepository, users repository.UserRepository, log *slog.Logger) *RoomService {
	if log == nil {
		log = slog.Default()
	}
	return &RoomService{rooms: rooms, users: users, log: log}
}

func (s *RoomService) resolveUser(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// CreateRoom opens a new waiting room for the live and auto-joins the creator
// as its owner. Room insert and owner membership land in one transaction.
func (s *RoomService) CreateRoom(ctx context.Context, token string, liveID int64, difficulty domain.LiveDifficulty) (int64, error) {
	const op = "service.room.create"

	user, err := s.resolveUser(ctx, token)
	if err != nil {
		return 0, err
	}
	if !difficulty.Valid() {
		return 0, ErrInvalidDifficulty
	}

	room := &domain.Room{
		LiveID:  liveID,
		Status:  domain.StatusWaiting,
		OwnerID: user.ID,
	}

	err = s.rooms.Transaction(ctx, func(r repository.RoomRepository) error {
		if err := r.CreateRoom(ctx, room); err != nil {
			return err
		}
		return r.AddMember(ctx, room.ID, user.ID, difficulty)
	})
	if err != nil {
		s.log.Error("create room failed", slog.String("op", op), sl.Err(err))
		return 0, err
	}

	s.log.Info("room created",
		slog.String("op", op),
		slog.Int64("room_id", room.ID),
		slog.Int64("live_id", liveID),
		slog.Int64("owner_id", user.ID),
	)
	return room.ID, nil
}

// ListRooms returns the waiting rooms a player can join. liveID 0 is a
// wildcard for all lives. Rooms without members or past the waiting phase
// are not listed.
func (s *RoomService) ListRooms(ctx context.Context, liveID int64) ([]domain.RoomInfo, error) {
	return s.rooms.ListWaiting(ctx, liveID)
}

// JoinRoom adds the caller to a waiting room. The capacity check and the
// membership insert run in one transaction with the room row locked, so
// concurrent joiners can never push a room past MaxRoomUsers.
func (s *RoomService) JoinRoom(ctx context.Context, token string, roomID int64, difficulty domain.LiveDifficulty) (domain.JoinRoomResult, error) {
	const op = "service.room.join"

	user, err := s.resolveUser(ctx, token)
	if err != nil {
		return 0, err
	}
	if !difficulty.Valid() {
		return 0, ErrInvalidDifficulty
	}

	result := domain.JoinOtherError
	err = s.rooms.Transaction(ctx, func(r repository.RoomRepository) error {
		room, err := r.GetForUpdate(ctx, roomID)
		if errors.Is(err, repository.ErrRoomNotFound) {
			result = domain.JoinOtherError
			return nil
		}
		if err != nil {
			return err
		}

		count, err := r.CountMembers(ctx, roomID)
		if err != nil {
			return err
		}

		switch {
		case count >= domain.MaxRoomUsers:
			result = domain.JoinRoomFull
		case room.Status != domain.StatusWaiting:
			result = domain.JoinDisbanded
		default:
			if err := r.AddMember(ctx, roomID, user.ID, difficulty); err != nil {
				if errors.Is(err, repository.ErrAlreadyJoined) {
					result = domain.JoinOtherError
					return nil
				}
				return err
			}
			result = domain.JoinOk
		}
		return nil
	})
	if err != nil {
		s.log.Error("join room failed", slog.String("op", op), slog.Int64("room_id", roomID), sl.Err(err))
		return 0, err
	}

	s.log.Info("join room handled",
		slog.String("op", op),
		slog.Int64("room_id", roomID),
		slog.Int64("user_id", user.ID),
		slog.Int("result", int(result)),
	)
	return result, nil
}

// WaitRoom reports the room status and its member list for polling clients.
// IsMe marks the caller's own entry, IsHost marks the owner's.
func (s *RoomService) WaitRoom(ctx context.Context, token string, roomID int64) (domain.RoomStatus, []domain.RoomMember, error) {
	user, err := s.resolveUser(ctx, token)
	if err != nil {
		return 0, nil, err
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return 0, nil, ErrRoomNotFound
		}
		return 0, nil, err
	}

	members, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return 0, nil, err
	}

	for i := range members {
		members[i].IsMe = members[i].UserID == user.ID
		members[i].IsHost = members[i].UserID == room.OwnerID
	}
	return room.Status, members, nil
}

// StartRoom moves the room into the live phase. Only the owner may start.
func (s *RoomService) StartRoom(ctx context.Context, token string, roomID int64) error {
	const op = "service.room.start"

	user, err := s.resolveUser(ctx, token)
	if err != nil {
		return err
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	if room.OwnerID != user.ID {
		return ErrNotRoomOwner
	}

	if err := s.rooms.SetStatus(ctx, roomID, domain.StatusLiveStart); err != nil {
		return err
	}

	s.log.Info("room started", slog.String("op", op), slog.Int64("room_id", roomID), slog.Int64("owner_id", user.ID))
	return nil
}

// EndRoom records the caller's own play result. The room as a whole is done
// once every member has submitted; that is observed through ResultRoom.
func (s *RoomService) EndRoom(ctx context.Context, token string, roomID int64, judgeCountList []int, score int) error {
	const op = "service.room.end"

	user, err := s.resolveUser(ctx, token)
	if err != nil {
		return err
	}

	if err := s.rooms.SaveResult(ctx, roomID, user.ID, judgeCountList, score); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrNotRoomMember
		}
		return err
	}

	s.log.Info("result recorded",
		slog.String("op", op),
		slog.Int64("room_id", roomID),
		slog.Int64("user_id", user.ID),
		slog.Int("score", score),
	)
	return nil
}

// ResultRoom returns results of the members who already submitted. Clients
// poll until the list length equals the room's member count.
func (s *RoomService) ResultRoom(ctx context.Context, roomID int64) ([]domain.ResultUser, error) {
	return s.rooms.ListResults(ctx, roomID)
}

// LeaveRoom removes the caller from the room. The last member out dissolves
// the room; a departing owner hands ownership to the earliest remaining
// joiner. All of it happens in one transaction under the room row lock.
func (s *RoomService) LeaveRoom(ctx context.Context, token string, roomID int64) error {
	const op = "service.room.leave"

	user, err := s.resolveUser(ctx, token)
	if err != nil {
		return err
	}

	err = s.rooms.Transaction(ctx, func(r repository.RoomRepository) error {
		room, err := r.GetForUpdate(ctx, roomID)
		if err != nil {
			return err
		}

		if err := r.RemoveMember(ctx, roomID, user.ID); err != nil {
			return err
		}

		members, err := r.ListMembers(ctx, roomID)
		if err != nil {
			return err
		}

		if len(members) == 0 {
			return r.SetStatus(ctx, roomID, domain.StatusDissolved)
		}
		if room.OwnerID == user.ID {
			return r.SetOwner(ctx, roomID, members[0].UserID)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return ErrRoomNotFound
		case errors.Is(err, repository.ErrMemberNotFound):
			return ErrNotRoomMember
		}
		s.log.Error("leave room failed", slog.String("op", op), slog.Int64("room_id", roomID), sl.Err(err))
		return err
	}

	s.log.Info("member left room", slog.String("op", op), slog.Int64("room_id", roomID), slog.Int64("user_id", user.ID))
	return nil
}
