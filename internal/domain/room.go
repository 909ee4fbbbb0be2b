package domain

// MaxRoomUsers caps how many members a single room can hold.
const MaxRoomUsers = 4

// LiveDifficulty is the difficulty a member selected for the live.
// The numeric values are part of the client protocol.
type LiveDifficulty int

const (
	DifficultyNormal LiveDifficulty = 1
	DifficultyHard   LiveDifficulty = 2
)

// Valid reports whether d is one of the protocol difficulties.
func (d LiveDifficulty) Valid() bool {
	return d == DifficultyNormal || d == DifficultyHard
}

// RoomStatus is the lifecycle state of a room. Dissolved is terminal:
// a room is never deleted, it is marked dissolved once the last member leaves.
type RoomStatus int

const (
	StatusWaiting   RoomStatus = 1
	StatusLiveStart RoomStatus = 2
	StatusDissolved RoomStatus = 3
)

// JoinRoomResult tells a client why a join attempt did or did not succeed.
// These are normal return values, not errors.
type JoinRoomResult int

const (
	JoinOk         JoinRoomResult = 1
	JoinRoomFull   JoinRoomResult = 2
	JoinDisbanded  JoinRoomResult = 3
	JoinOtherError JoinRoomResult = 4
)

// Room is a live session that players gather in before starting.
// The owner is always a member of their own room.
type Room struct {
	ID      int64      `json:"id"`
	LiveID  int64      `json:"live_id"`
	Status  RoomStatus `json:"status"`
	OwnerID int64      `json:"owner_id"`
}

// RoomInfo is a waiting-room summary shown in the room list.
type RoomInfo struct {
	RoomID          int64 `json:"room_id"`
	LiveID          int64 `json:"live_id"`
	JoinedUserCount int   `json:"joined_user_count"`
	MaxUserCount    int   `json:"max_user_count"`
}

// RoomMember is one entry of the wait-room member list, already joined
// with the user profile. IsMe and IsHost are relative to the caller and
// are filled in by the service layer.
type RoomMember struct {
	UserID           int64          `json:"user_id"`
	Name             string         `json:"name"`
	LeaderCardID     int64          `json:"leader_card_id"`
	SelectDifficulty LiveDifficulty `json:"select_difficulty"`
	IsMe             bool           `json:"is_me"`
	IsHost           bool           `json:"is_host"`
}

// ResultUser is a submitted play result of one room member.
type ResultUser struct {
	UserID         int64 `json:"user_id"`
	JudgeCountList []int `json:"judge_count_list"`
	Score          int   `json:"score"`
}
