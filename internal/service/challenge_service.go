package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"iwala99_backend/internal/model"
	"iwala99_backend/internal/repository"
	"iwala99_backend/internal/util"
	"iwala99_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type ChallengeService struct {
	ChallengeRepo    *repository.ChallengeRepository
	SubmissionRepo   *repository.SubmissionRepository
	NotificationSvc  *NotificationService
	Hub              *RealtimeHub
	LeaderboardLimit int
}

func NewChallengeService(
	challengeRepo *repository.ChallengeRepository,
	submissionRepo *repository.SubmissionRepository,
	notificationSvc *NotificationService,
	hub *RealtimeHub,
) *ChallengeService {
	return &ChallengeService{
		ChallengeRepo:    challengeRepo,
		SubmissionRepo:   submissionRepo,
		NotificationSvc:  notificationSvc,
		Hub:              hub,
		LeaderboardLimit: 20,
	}
}

// NormalizeFlag folds case and whitespace so "  FLAG{x} " and "flag{x}"
// compare equal.
func NormalizeFlag(flag string) string {
	return strings.ToLower(strings.TrimSpace(flag))
}

// HashFlag is the hex SHA-256 of the normalized flag. This digest is the
// only representation of a flag the database ever sees.
func HashFlag(flag string) string {
	sum := sha256.Sum256([]byte(NormalizeFlag(flag)))
	return hex.EncodeToString(sum[:])
}

// ChallengeView is a challenge as shown to a player. The flag digest and
// numeric primary key stay server side.
type ChallengeView struct {
	ID          string                    `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Category    model.ChallengeCategory   `json:"category"`
	Difficulty  model.ChallengeDifficulty `json:"difficulty"`
	Points      int                       `json:"points"`
	Hints       []string                  `json:"hints"`
	IsWeekly    bool                      `json:"isWeekly"`
	ExpiresAt   *time.Time                `json:"expiresAt,omitempty"`
	Solved      bool                      `json:"solved"`
	Solves      int64                     `json:"solves"`
	Locked      bool                      `json:"locked"`
}

// BossUnlocked reports whether the final boss gate opens: every active
// insane challenge solved, and at least one exists.
func BossUnlocked(challenges []model.Challenge, solved map[uint]bool) bool {
	insaneTotal := 0
	for _, ch := range challenges {
		if ch.Difficulty != model.DifficultyInsane {
			continue
		}
		insaneTotal++
		if !solved[ch.ID] {
			return false
		}
	}
	return insaneTotal > 0
}

// ListForUser assembles the maze grid. userID of 0 means an anonymous
// visitor, who sees everything locked-state aware but nothing solved.
func (s *ChallengeService) ListForUser(userID uint) ([]ChallengeView, error) {
	challenges, err := s.ChallengeRepo.FindActive()
	if err != nil {
		return nil, err
	}

	solved := make(map[uint]bool)
	if userID != 0 {
		ids, err := s.SubmissionRepo.SolvedChallengeIDs(userID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			solved[id] = true
		}
	}

	counts, err := s.ChallengeRepo.SolveCounts()
	if err != nil {
		return nil, err
	}

	bossOpen := BossUnlocked(challenges, solved)
	now := time.Now()

	views := make([]ChallengeView, 0, len(challenges))
	for _, ch := range challenges {
		if ch.Expired(now) {
			continue
		}
		views = append(views, ChallengeView{
			ID:          ch.PublicID,
			Title:       ch.Title,
			Description: ch.Description,
			Category:    ch.Category,
			Difficulty:  ch.Difficulty,
			Points:      ch.Points,
			Hints:       ch.Hints,
			IsWeekly:    ch.IsWeekly,
			ExpiresAt:   ch.ExpiresAt,
			Solved:      solved[ch.ID],
			Solves:      counts[ch.ID],
			Locked:      ch.Category == model.CategoryBoss && !bossOpen,
		})
	}
	return views, nil
}

// SubmissionResult is the outcome of one flag submit.
type SubmissionResult struct {
	Correct       bool `json:"correct"`
	AlreadySolved bool `json:"alreadySolved"`
	Points        int  `json:"points"`
}

// SubmitFlag verifies the digest and records the solve. A concurrent
// duplicate lands on the unique index and is reported as already solved
// rather than an error.
func (s *ChallengeService) SubmitFlag(userID uint, challengePublicID, flag string) (*SubmissionResult, error) {
	challenge, err := s.ChallengeRepo.FindByPublicID(challengePublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	if !challenge.IsActive || challenge.Expired(time.Now()) {
		return nil, util.ErrChallengeInactive
	}

	if challenge.Category == model.CategoryBoss {
		challenges, err := s.ChallengeRepo.FindActive()
		if err != nil {
			return nil, err
		}
		ids, err := s.SubmissionRepo.SolvedChallengeIDs(userID)
		if err != nil {
			return nil, err
		}
		solved := make(map[uint]bool, len(ids))
		for _, id := range ids {
			solved[id] = true
		}
		if !BossUnlocked(challenges, solved) {
			return nil, util.ErrChallengeInactive
		}
	}

	if HashFlag(flag) != challenge.FlagHash {
		monitoring.FlagSubmissionCounter.WithLabelValues("incorrect").Inc()
		return &SubmissionResult{Correct: false}, nil
	}

	submission := &model.Submission{UserID: userID, ChallengeID: challenge.ID}
	if err := s.SubmissionRepo.Create(submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			monitoring.FlagSubmissionCounter.WithLabelValues("duplicate").Inc()
			return &SubmissionResult{Correct: true, AlreadySolved: true, Points: challenge.Points}, nil
		}
		return nil, err
	}

	monitoring.FlagSubmissionCounter.WithLabelValues("correct").Inc()

	// Everyone watching the board sees the standings move.
	if s.Hub != nil {
		s.Hub.PushToUsers(nil, WSMessage{
			Type: EventLeaderboard,
			Data: map[string]interface{}{
				"challengeId": challenge.PublicID,
			},
		})
	}

	if s.NotificationSvc != nil {
		s.NotificationSvc.Notify(userID, model.NotifySolve,
			"Challenge solved",
			fmt.Sprintf("%s is down. +%d points.", challenge.Title, challenge.Points),
			map[string]interface{}{
				"challengeId": challenge.PublicID,
				"points":      challenge.Points,
			})
	}

	return &SubmissionResult{Correct: true, Points: challenge.Points}, nil
}

func (s *ChallengeService) Leaderboard() ([]repository.LeaderboardRow, error) {
	return s.SubmissionRepo.LeaderboardTop(s.LeaderboardLimit)
}

// AdminCreateInput carries the raw flag; it is hashed here and dropped.
type AdminChallengeInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Difficulty  string   `json:"difficulty" binding:"required"`
	Points      int      `json:"points" binding:"required,min=1"`
	Flag        string   `json:"flag"`
	Hints       []string `json:"hints"`
	IsActive    *bool    `json:"isActive"`
	IsWeekly    bool     `json:"isWeekly"`
	ExpiresAt   *string  `json:"expiresAt"`
}

func (s *ChallengeService) AdminList() ([]model.Challenge, error) {
	return s.ChallengeRepo.FindAll()
}

func (s *ChallengeService) AdminCreate(input *AdminChallengeInput, createdBy uint) (*model.Challenge, error) {
	if input.Flag == "" {
		return nil, errors.New("flag is required")
	}

	challenge := &model.Challenge{
		PublicID:    model.GenerateUUID(),
		Title:       input.Title,
		Description: input.Description,
		Category:    model.ChallengeCategory(input.Category),
		Difficulty:  model.ChallengeDifficulty(input.Difficulty),
		Points:      input.Points,
		Hints:       input.Hints,
		FlagHash:    HashFlag(input.Flag),
		IsActive:    true,
		IsWeekly:    input.IsWeekly,
		CreatedBy:   &createdBy,
	}
	if input.IsActive != nil {
		challenge.IsActive = *input.IsActive
	}
	if input.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *input.ExpiresAt)
		if err != nil {
			return nil, errors.New("expiresAt must be RFC 3339")
		}
		challenge.ExpiresAt = &t
	}

	if err := s.ChallengeRepo.Create(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *ChallengeService) AdminUpdate(publicID string, input *AdminChallengeInput) (*model.Challenge, error) {
	challenge, err := s.ChallengeRepo.FindByPublicID(publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	challenge.Title = input.Title
	challenge.Description = input.Description
	challenge.Category = model.ChallengeCategory(input.Category)
	challenge.Difficulty = model.ChallengeDifficulty(input.Difficulty)
	challenge.Points = input.Points
	challenge.Hints = input.Hints
	challenge.IsWeekly = input.IsWeekly
	if input.Flag != "" {
		challenge.FlagHash = HashFlag(input.Flag)
	}
	if input.IsActive != nil {
		challenge.IsActive = *input.IsActive
	}
	if input.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *input.ExpiresAt)
		if err != nil {
			return nil, errors.New("expiresAt must be RFC 3339")
		}
		challenge.ExpiresAt = &t
	}

	if err := s.ChallengeRepo.Update(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *ChallengeService) AdminDelete(publicID string) error {
	challenge, err := s.ChallengeRepo.FindByPublicID(publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrChallengeNotFound
		}
		return err
	}
	return s.ChallengeRepo.Delete(challenge.ID)
}
