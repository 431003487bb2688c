package model

import (
	"time"
)

type ChallengeCategory string
type ChallengeDifficulty string

const (
	CategoryWeb       ChallengeCategory = "web"
	CategoryCrypto    ChallengeCategory = "crypto"
	CategoryForensics ChallengeCategory = "forensics"
	CategoryPwn       ChallengeCategory = "pwn"
	CategoryReverse   ChallengeCategory = "reverse"
	CategoryMisc      ChallengeCategory = "misc"
	CategoryBoss      ChallengeCategory = "boss"

	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
	DifficultyInsane ChallengeDifficulty = "insane"
	DifficultyBoss   ChallengeDifficulty = "boss"
)

// Challenge is a maze puzzle. FlagHash holds the SHA-256 digest of the
// normalized flag; the raw flag is never stored and the hash never leaves
// the server.
type Challenge struct {
	BaseModel
	PublicID    string              `gorm:"size:36;uniqueIndex;not null" json:"publicId"`
	Title       string              `gorm:"size:100;not null" json:"title"`
	Description string              `gorm:"type:text;not null" json:"description"`
	Category    ChallengeCategory   `gorm:"type:enum('web','crypto','forensics','pwn','reverse','misc','boss');not null;index" json:"category"`
	Difficulty  ChallengeDifficulty `gorm:"type:enum('easy','medium','hard','insane','boss');default:'medium'" json:"difficulty"`
	Points      int                 `gorm:"not null" json:"points"`
	Hints       []string            `gorm:"serializer:json;type:text" json:"hints"`
	FlagHash    string              `gorm:"size:64;not null" json:"-"`
	IsActive    bool                `gorm:"default:true;index" json:"isActive"`
	IsWeekly    bool                `gorm:"default:false" json:"isWeekly"`
	ExpiresAt   *time.Time          `json:"expiresAt"`
	CreatedBy   *uint               `json:"createdBy"`
}

func (Challenge) TableName() string {
	return "ctf_challenges"
}

// Expired reports whether the challenge has passed its expiry, if any.
func (c *Challenge) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
