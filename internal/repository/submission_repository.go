package repository

import (
	"iwala99_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Create relies on the (user_id, challenge_id) unique index. A duplicate
// solve surfaces as gorm.ErrDuplicatedKey for the service to absorb.
func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) SolvedChallengeIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Submission{}).
		Where("user_id = ?", userID).
		Pluck("challenge_id", &ids).Error
	return ids, err
}

func (r *SubmissionRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).Count(&count).Error
	return count, err
}

// LeaderboardRow is one scored user aggregated over active challenges.
type LeaderboardRow struct {
	UserID      uint   `json:"-"`
	PublicID    string `json:"user_id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	Score       int64  `json:"score"`
	SolvedCount int64  `json:"solved_count"`
}

// LeaderboardTop ranks users by total points over active challenges,
// ties broken by who got there first.
func (r *SubmissionRepository) LeaderboardTop(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.Model(&model.Submission{}).
		Select("users.id AS user_id, users.public_id, users.username, users.avatar, COALESCE(SUM(ctf_challenges.points), 0) AS score, COUNT(ctf_submissions.id) AS solved_count").
		Joins("JOIN users ON users.id = ctf_submissions.user_id").
		Joins("JOIN ctf_challenges ON ctf_challenges.id = ctf_submissions.challenge_id").
		Where("ctf_challenges.is_active = true AND users.disabled = false").
		Group("users.id, users.public_id, users.username, users.avatar").
		Order("score DESC, MAX(ctf_submissions.created_at) ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// UserScore sums a single user's points over active challenges.
func (r *SubmissionRepository) UserScore(userID uint) (int64, error) {
	var score int64
	err := r.DB.Model(&model.Submission{}).
		Select("COALESCE(SUM(ctf_challenges.points), 0)").
		Joins("JOIN ctf_challenges ON ctf_challenges.id = ctf_submissions.challenge_id").
		Where("ctf_submissions.user_id = ? AND ctf_challenges.is_active = true", userID).
		Scan(&score).Error
	return score, err
}
