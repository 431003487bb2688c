package repository

import (
	"iwala99_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

// FindActive returns every visible challenge ordered for the puzzle maze grid.
func (r *ChallengeRepository) FindActive() ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.DB.Where("is_active = true").
		Order("category ASC, points ASC, id ASC").
		Find(&challenges).Error
	return challenges, err
}

func (r *ChallengeRepository) FindAll() ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.DB.Order("category ASC, points ASC, id ASC").Find(&challenges).Error
	return challenges, err
}

func (r *ChallengeRepository) FindByID(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.First(&challenge, id).Error
	return &challenge, err
}

func (r *ChallengeRepository) FindByPublicID(publicID string) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Where("public_id = ?", publicID).First(&challenge).Error
	return &challenge, err
}

func (r *ChallengeRepository) Create(challenge *model.Challenge) error {
	return r.DB.Create(challenge).Error
}

func (r *ChallengeRepository) Update(challenge *model.Challenge) error {
	return r.DB.Save(challenge).Error
}

func (r *ChallengeRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Challenge{}, id).Error
}

// SolveCounts returns submission totals grouped by challenge.
func (r *ChallengeRepository) SolveCounts() (map[uint]int64, error) {
	type row struct {
		ChallengeID uint
		Total       int64
	}
	var rows []row
	err := r.DB.Model(&model.Submission{}).
		Select("challenge_id, COUNT(*) AS total").
		Group("challenge_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ChallengeID] = r.Total
	}
	return counts, nil
}

func (r *ChallengeRepository) CountActive() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Challenge{}).Where("is_active = true").Count(&count).Error
	return count, err
}
