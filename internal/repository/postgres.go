package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rmatsuoka/gameserver/internal/domain"
	"github.com/rmatsuoka/gameserver/internal/repository/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User, token string) error {
	if user == nil {
		return errors.New("user is nil")
	}

	userModel := model.User{
		Name:         user.Name,
		Token:        token,
		LeaderCardID: user.LeaderCardID,
	}

	if err := r.db.WithContext(ctx).Create(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTokenExists
		}
		return err
	}

	user.ID = userModel.ID
	return nil
}

func (r *PostgresUserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &domain.User{
		ID:           user.ID,
		Name:         user.Name,
		LeaderCardID: user.LeaderCardID,
	}, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("user is nil")
	}

	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"name":           user.Name,
		"leader_card_id": user.LeaderCardID,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewPostgresRoomRepository(db *gorm.DB) *PostgresRoomRepository {
	return &PostgresRoomRepository{db: db}
}

// Transaction runs fn against a repository bound to a single database
// transaction. Any error from fn rolls the whole transaction back.
func (r *PostgresRoomRepository) Transaction(ctx context.Context, fn func(RoomRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRoomRepository{db: tx})
	})
}

func (r *PostgresRoomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	if room == nil {
		return errors.New("room is nil")
	}

	roomModel := model.Room{
		LiveID:  room.LiveID,
		Status:  int(room.Status),
		OwnerID: room.OwnerID,
	}

	if err := r.db.WithContext(ctx).Create(&roomModel).Error; err != nil {
		return err
	}

	room.ID = roomModel.ID
	return nil
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	return r.getRoom(ctx, r.db, roomID)
}

// GetForUpdate locks the room row until the surrounding transaction ends.
// All membership mutations on the room serialize behind this lock.
func (r *PostgresRoomRepository) GetForUpdate(ctx context.Context, roomID int64) (*domain.Room, error) {
	return r.getRoom(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), roomID)
}

func (r *PostgresRoomRepository) getRoom(ctx context.Context, db *gorm.DB, roomID int64) (*domain.Room, error) {
	var room model.Room
	err := db.WithContext(ctx).First(&room, "id = ?", roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return &domain.Room{
		ID:      room.ID,
		LiveID:  room.LiveID,
		Status:  domain.RoomStatus(room.Status),
		OwnerID: room.OwnerID,
	}, nil
}

func (r *PostgresRoomRepository) ListWaiting(ctx context.Context, liveID int64) ([]domain.RoomInfo, error) {
	var rows []struct {
		RoomID          int64
		LiveID          int64
		JoinedUserCount int
	}

	q := r.db.WithContext(ctx).Model(&model.Room{}).
		Select("rooms.id AS room_id, rooms.live_id, COUNT(room_members.user_id) AS joined_user_count").
		Joins("JOIN room_members ON room_members.room_id = rooms.id").
		Where("rooms.status = ?", int(domain.StatusWaiting)).
		Group("rooms.id, rooms.live_id")
	if liveID != 0 {
		q = q.Where("rooms.live_id = ?", liveID)
	}

	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	infos := make([]domain.RoomInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, domain.RoomInfo{
			RoomID:          row.RoomID,
			LiveID:          row.LiveID,
			JoinedUserCount: row.JoinedUserCount,
			MaxUserCount:    domain.MaxRoomUsers,
		})
	}
	return infos, nil
}

func (r *PostgresRoomRepository) SetStatus(ctx context.Context, roomID int64, status domain.RoomStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Room{}).Where("id = ?", roomID).Update("status", int(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) SetOwner(ctx context.Context, roomID, ownerID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Room{}).Where("id = ?", roomID).Update("owner_id", ownerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) AddMember(ctx context.Context, roomID, userID int64, difficulty domain.LiveDifficulty) error {
	member := model.RoomMember{
		RoomID:           roomID,
		UserID:           userID,
		SelectDifficulty: int(difficulty),
	}

	if err := r.db.WithContext(ctx).Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyJoined
		}
		return err
	}
	return nil
}

func (r *PostgresRoomRepository) RemoveMember(ctx context.Context, roomID, userID int64) error {
	res := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&model.RoomMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) CountMembers(ctx context.Context, roomID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RoomMember{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *PostgresRoomRepository) ListMembers(ctx context.Context, roomID int64) ([]domain.RoomMember, error) {
	var rows []struct {
		UserID           int64
		Name             string
		LeaderCardID     int64
		SelectDifficulty int
	}

	err := r.db.WithContext(ctx).Model(&model.RoomMember{}).
		Select("room_members.user_id, users.name, users.leader_card_id, room_members.select_difficulty").
		Joins("JOIN users ON users.id = room_members.user_id").
		Where("room_members.room_id = ?", roomID).
		Order("room_members.created_at, room_members.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	members := make([]domain.RoomMember, 0, len(rows))
	for _, row := range rows {
		members = append(members, domain.RoomMember{
			UserID:           row.UserID,
			Name:             row.Name,
			LeaderCardID:     row.LeaderCardID,
			SelectDifficulty: domain.LiveDifficulty(row.SelectDifficulty),
		})
	}
	return members, nil
}

func (r *PostgresRoomRepository) SaveResult(ctx context.Context, roomID, userID int64, judgeCountList []int, score int) error {
	encoded, err := json.Marshal(judgeCountList)
	if err != nil {
		return fmt.Errorf("encode judge count list: %w", err)
	}
	judges := string(encoded)

	res := r.db.WithContext(ctx).Model(&model.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Updates(map[string]any{
			"judge_count_list": judges,
			"score":            score,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) ListResults(ctx context.Context, roomID int64) ([]domain.ResultUser, error) {
	var rows []struct {
		UserID         int64
		JudgeCountList string
		Score          int
	}

	err := r.db.WithContext(ctx).Model(&model.RoomMember{}).
		Select("user_id, judge_count_list, score").
		Where("room_id = ? AND score IS NOT NULL", roomID).
		Order("created_at, user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]domain.ResultUser, 0, len(rows))
	for _, row := range rows {
		var judges []int
		if err := json.Unmarshal([]byte(row.JudgeCountList), &judges); err != nil {
			return nil, fmt.Errorf("decode judge count list for user %d: %w", row.UserID, err)
		}
		results = append(results, domain.ResultUser{
			UserID:         row.UserID,
			JudgeCountList: judges,
			Score:          row.Score,
		})
	}
	return results, nil
}
