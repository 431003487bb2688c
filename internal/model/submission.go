package model

// Submission records a correct solve of a challenge by a user. The composite
// unique index is the authority on "solved exactly once": concurrent submits
// from two sessions collapse into a duplicate-key error, not a double score.
type Submission struct {
	BaseModel
	UserID      uint `gorm:"not null;uniqueIndex:idx_user_challenge" json:"userId"`
	ChallengeID uint `gorm:"not null;uniqueIndex:idx_user_challenge;index" json:"challengeId"`
}

func (Submission) TableName() string {
	return "ctf_submissions"
}
