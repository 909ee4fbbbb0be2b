package converter

import "github.com/rmatsuoka/gameserver/internal/domain"

type RoomUserResponse struct {
	UserID           int64  `json:"user_id"`
	Name             string `json:"name"`
	LeaderCardID     int64  `json:"leader_card_id"`
	SelectDifficulty int    `json:"select_difficulty"`
	IsMe             bool   `json:"is_me"`
	IsHost           bool   `json:"is_host"`
}

func MembersToApi(members []domain.RoomMember) []RoomUserResponse {
	out := make([]RoomUserResponse, 0, len(members))
	for _, m := range members {
		out = append(out, RoomUserResponse{
			UserID:           m.UserID,
			Name:             m.Name,
			LeaderCardID:     m.LeaderCardID,
			SelectDifficulty: int(m.SelectDifficulty),
			IsMe:             m.IsMe,
			IsHost:           m.IsHost,
		})
	}
	return out
}
