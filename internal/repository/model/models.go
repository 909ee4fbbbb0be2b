package model

import "time"

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:255;not null"`
	Token        string `gorm:"size:64;uniqueIndex;not null"`
	LeaderCardID int64  `gorm:"not null"`
}

type Room struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	LiveID  int64 `gorm:"index;not null"`
	Status  int   `gorm:"not null"`
	OwnerID int64 `gorm:"not null"`
}

// RoomMember keys on (room_id, user_id): a user joins a room at most once.
// JudgeCountList and Score stay NULL until the member submits a result.
// CreatedAt records join order, used when ownership is handed over.
type RoomMember struct {
	RoomID           int64   `gorm:"primaryKey;autoIncrement:false"`
	UserID           int64   `gorm:"primaryKey;autoIncrement:false"`
	SelectDifficulty int     `gorm:"not null"`
	JudgeCountList   *string `gorm:"type:text"`
	Score            *int
	CreatedAt        time.Time
}
