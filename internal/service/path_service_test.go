package service

import (
	"testing"

	"iwala99_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeChallenge(id uint, category model.ChallengeCategory, difficulty model.ChallengeDifficulty) model.Challenge {
	c := model.Challenge{
		Category:   category,
		Difficulty: difficulty,
		IsActive:   true,
	}
	c.ID = id
	return c
}

func TestComputePathStatusesPartialProgress(t *testing.T) {
	challenges := []model.Challenge{
		makeChallenge(1, model.CategoryCrypto, model.DifficultyEasy),
		makeChallenge(2, model.CategoryCrypto, model.DifficultyMedium),
		makeChallenge(3, model.CategoryCrypto, model.DifficultyHard),
		makeChallenge(4, model.CategoryWeb, model.DifficultyEasy),
		makeChallenge(5, model.CategoryWeb, model.DifficultyMedium),
	}
	solved := map[uint]bool{1: true, 2: true}

	statuses := ComputePathStatuses(challenges, solved, "9f86d081-0000-0000-0000-000000000000")
	require.Len(t, statuses, 2)

	byCategory := map[model.ChallengeCategory]PathStatus{}
	for _, s := range statuses {
		byCategory[s.Category] = s
	}

	crypto := byCategory[model.CategoryCrypto]
	assert.Equal(t, 2, crypto.Solved)
	assert.Equal(t, 3, crypto.Total)
	assert.False(t, crypto.IsComplete)
	assert.Empty(t, crypto.SecretCode)

	web := byCategory[model.CategoryWeb]
	assert.Equal(t, 0, web.Solved)
	assert.Equal(t, 2, web.Total)
	assert.False(t, web.IsComplete)

	assert.False(t, AnyPathComplete(statuses))
	assert.False(t, AllPathsComplete(statuses))
}

func TestComputePathStatusesCompletionFlips(t *testing.T) {
	challenges := []model.Challenge{
		makeChallenge(1, model.CategoryCrypto, model.DifficultyEasy),
		makeChallenge(2, model.CategoryCrypto, model.DifficultyMedium),
		makeChallenge(3, model.CategoryCrypto, model.DifficultyHard),
	}
	solved := map[uint]bool{1: true, 2: true}

	statuses := ComputePathStatuses(challenges, solved, "abc12345-ffff")
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].IsComplete)

	// The third solve completes the path and reveals the code.
	solved[3] = true
	statuses = ComputePathStatuses(challenges, solved, "abc12345-ffff")
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].IsComplete)
	assert.NotEmpty(t, statuses[0].SecretCode)
	assert.True(t, AllPathsComplete(statuses))
}

func TestComputePathStatusesBossIsAPath(t *testing.T) {
	challenges := []model.Challenge{
		makeChallenge(1, model.CategoryWeb, model.DifficultyEasy),
		makeChallenge(2, model.CategoryBoss, model.DifficultyBoss),
	}

	statuses := ComputePathStatuses(challenges, map[uint]bool{1: true}, "user-id")
	require.Len(t, statuses, 2)

	byCategory := map[model.ChallengeCategory]PathStatus{}
	for _, s := range statuses {
		byCategory[s.Category] = s
	}
	assert.True(t, byCategory[model.CategoryWeb].IsComplete)

	boss := byCategory[model.CategoryBoss]
	assert.Equal(t, 1, boss.Total)
	assert.False(t, boss.IsComplete)

	// An unsolved boss opens recruitment but keeps the omega gate shut.
	assert.True(t, AnyPathComplete(statuses))
	assert.False(t, AllPathsComplete(statuses))

	statuses = ComputePathStatuses(challenges, map[uint]bool{1: true, 2: true}, "user-id")
	assert.True(t, AllPathsComplete(statuses))
}

func TestAllPathsCompleteEmptyIsFalse(t *testing.T) {
	assert.False(t, AllPathsComplete(nil))
	assert.False(t, AllPathsComplete([]PathStatus{}))
	assert.False(t, AnyPathComplete(nil))
}

func TestAnyPathCompleteSinglePathOpensRecruitment(t *testing.T) {
	statuses := []PathStatus{
		{Category: model.CategoryCrypto, Solved: 3, Total: 3, IsComplete: true},
		{Category: model.CategoryWeb, Solved: 0, Total: 2},
	}
	assert.True(t, AnyPathComplete(statuses))
	assert.False(t, AllPathsComplete(statuses))
}

func TestSecretCodeDeterministic(t *testing.T) {
	a := SecretCode(model.CategoryCrypto, "9f86d081-1111-2222-3333-444455556666")
	b := SecretCode(model.CategoryCrypto, "9f86d081-aaaa-bbbb-cccc-ddddeeee0000")
	c := SecretCode(model.CategoryWeb, "9f86d081-1111-2222-3333-444455556666")

	// Only the first 8 characters of the user ID participate.
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	assert.LessOrEqual(t, len(a), 12)
	assert.Regexp(t, `^[A-Z0-9]+$`, a)
}

func TestSecretCodeShortUserID(t *testing.T) {
	code := SecretCode(model.CategoryMisc, "ab")
	assert.NotEmpty(t, code)
	assert.Regexp(t, `^[A-Z0-9]+$`, code)
}

func TestBossUnlocked(t *testing.T) {
	challenges := []model.Challenge{
		makeChallenge(1, model.CategoryPwn, model.DifficultyInsane),
		makeChallenge(2, model.CategoryReverse, model.DifficultyInsane),
		makeChallenge(3, model.CategoryWeb, model.DifficultyEasy),
		makeChallenge(4, model.CategoryBoss, model.DifficultyBoss),
	}

	assert.False(t, BossUnlocked(challenges, map[uint]bool{1: true}))
	assert.True(t, BossUnlocked(challenges, map[uint]bool{1: true, 2: true}))

	// No insane challenges at all keeps the gate shut.
	easyOnly := []model.Challenge{
		makeChallenge(3, model.CategoryWeb, model.DifficultyEasy),
	}
	assert.False(t, BossUnlocked(easyOnly, map[uint]bool{3: true}))
}
