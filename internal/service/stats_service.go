package service

import (
	"iwala99_backend/internal/repository"
)

type StatsService struct {
	UserRepo       *repository.UserRepository
	ChallengeRepo  *repository.ChallengeRepository
	SubmissionRepo *repository.SubmissionRepository
	Hub            *RealtimeHub
}

func NewStatsService(
	userRepo *repository.UserRepository,
	challengeRepo *repository.ChallengeRepository,
	submissionRepo *repository.SubmissionRepository,
	hub *RealtimeHub,
) *StatsService {
	return &StatsService{
		UserRepo:       userRepo,
		ChallengeRepo:  challengeRepo,
		SubmissionRepo: submissionRepo,
		Hub:            hub,
	}
}

// CommunityStats is the landing page counter block.
type CommunityStats struct {
	Members          int64 `json:"members"`
	ActiveChallenges int64 `json:"activeChallenges"`
	TotalSolves      int64 `json:"totalSolves"`
	OnlineNow        int64 `json:"onlineNow"`
}

func (s *StatsService) Community() (*CommunityStats, error) {
	members, err := s.UserRepo.Count()
	if err != nil {
		return nil, err
	}
	active, err := s.ChallengeRepo.CountActive()
	if err != nil {
		return nil, err
	}
	solves, err := s.SubmissionRepo.CountAll()
	if err != nil {
		return nil, err
	}

	stats := &CommunityStats{
		Members:          members,
		ActiveChallenges: active,
		TotalSolves:      solves,
	}
	if s.Hub != nil {
		stats.OnlineNow = s.Hub.OnlineCount()
	}
	return stats, nil
}
