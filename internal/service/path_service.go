package service

import (
	"encoding/base64"
	"sort"
	"strings"

	"iwala99_backend/internal/model"
	"iwala99_backend/internal/repository"
)

// PathStatus is one category's completion state for a user. SecretCode is
// only populated once the path is complete.
type PathStatus struct {
	Category   model.ChallengeCategory `json:"category"`
	Solved     int                     `json:"solved"`
	Total      int                     `json:"total"`
	IsComplete bool                    `json:"isComplete"`
	SecretCode string                  `json:"secretCode,omitempty"`
}

type PathService struct {
	ChallengeRepo  *repository.ChallengeRepository
	SubmissionRepo *repository.SubmissionRepository
	UserRepo       *repository.UserRepository
}

func NewPathService(
	challengeRepo *repository.ChallengeRepository,
	submissionRepo *repository.SubmissionRepository,
	userRepo *repository.UserRepository,
) *PathService {
	return &PathService{
		ChallengeRepo:  challengeRepo,
		SubmissionRepo: submissionRepo,
		UserRepo:       userRepo,
	}
}

// SecretCode derives the completion reward for a path. The code is a
// deterministic function of the category and the first 8 characters of
// the user's public ID: base64 the pair, strip everything that is not a
// letter or digit, take the first 12 characters, upper-case them. It is
// cosmetic and carries no server-side authority.
func SecretCode(category model.ChallengeCategory, userPublicID string) string {
	seed := userPublicID
	if len(seed) > 8 {
		seed = seed[:8]
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(string(category) + "-" + seed))

	var b strings.Builder
	for _, r := range encoded {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) > 12 {
		code = code[:12]
	}
	return strings.ToUpper(code)
}

// ComputePathStatuses folds challenges and the solved set into per-path
// progress. Every active category counts as a path, the boss included,
// so the all-paths gate stays shut until the boss falls. A path is
// complete when every one of its challenges is solved and it has at
// least one.
func ComputePathStatuses(challenges []model.Challenge, solved map[uint]bool, userPublicID string) []PathStatus {
	type tally struct {
		solved int
		total  int
	}
	tallies := make(map[model.ChallengeCategory]*tally)

	for _, ch := range challenges {
		t, ok := tallies[ch.Category]
		if !ok {
			t = &tally{}
			tallies[ch.Category] = t
		}
		t.total++
		if solved[ch.ID] {
			t.solved++
		}
	}

	statuses := make([]PathStatus, 0, len(tallies))
	for category, t := range tallies {
		status := PathStatus{
			Category:   category,
			Solved:     t.solved,
			Total:      t.total,
			IsComplete: t.total > 0 && t.solved == t.total,
		}
		if status.IsComplete {
			status.SecretCode = SecretCode(category, userPublicID)
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Category < statuses[j].Category
	})
	return statuses
}

// AllPathsComplete requires at least one path, all of them complete.
func AllPathsComplete(statuses []PathStatus) bool {
	if len(statuses) == 0 {
		return false
	}
	for _, s := range statuses {
		if !s.IsComplete {
			return false
		}
	}
	return true
}

// AnyPathComplete opens the outer recruitment door.
func AnyPathComplete(statuses []PathStatus) bool {
	for _, s := range statuses {
		if s.IsComplete {
			return true
		}
	}
	return false
}

func (s *PathService) statusesFor(userID uint) ([]PathStatus, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

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

	return ComputePathStatuses(challenges, solved, user.PublicID), nil
}

// PathOverview is the /paths/status payload.
type PathOverview struct {
	Paths           []PathStatus `json:"paths"`
	HasCompletedAny bool         `json:"hasCompletedAnyPath"`
	HasCompletedAll bool         `json:"hasCompletedAllPaths"`
}

func (s *PathService) Overview(userID uint) (*PathOverview, error) {
	statuses, err := s.statusesFor(userID)
	if err != nil {
		return nil, err
	}

	return &PathOverview{
		Paths:           statuses,
		HasCompletedAny: AnyPathComplete(statuses),
		HasCompletedAll: AllPathsComplete(statuses),
	}, nil
}

// RecruitmentAccess reports whether the recruitment page is open for
// the user. One completed path is enough; omega demands all of them.
// Evaluated fresh on every call.
func (s *PathService) RecruitmentAccess(userID uint) (bool, error) {
	statuses, err := s.statusesFor(userID)
	if err != nil {
		return false, err
	}
	return AnyPathComplete(statuses), nil
}

// OmegaBriefing is what a fully qualified member gets to see.
type OmegaBriefing struct {
	Eligible bool         `json:"eligible"`
	Paths    []PathStatus `json:"paths,omitempty"`
	Message  string       `json:"message,omitempty"`
	Contact  string       `json:"contact,omitempty"`
}

func (s *PathService) Omega(userID uint) (*OmegaBriefing, error) {
	statuses, err := s.statusesFor(userID)
	if err != nil {
		return nil, err
	}

	if !AllPathsComplete(statuses) {
		return &OmegaBriefing{Eligible: false}, nil
	}

	return &OmegaBriefing{
		Eligible: true,
		Paths:    statuses,
		Message:  "All paths cleared. Present your secret codes to the operators to begin vetting.",
		Contact:  "omega@iwala99.net",
	}, nil
}
