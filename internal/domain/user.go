package domain

// User is a player profile that can host or join rooms.
// The authentication token never leaves the repository layer.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	LeaderCardID int64  `json:"leader_card_id"`
}
