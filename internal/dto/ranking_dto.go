package dto

// RankDTO is one leaderboard row. Rank is 1-based and assigned from the
// descending-score result order.
type RankDTO struct {
	Rank     int     `json:"rank"`
	UserID   uint    `json:"user_id"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
