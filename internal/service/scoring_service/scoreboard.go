package scoring_service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/models"
)

// ComputeScoreboard ranks participants by solved problems (desc), total time
// taken (asc) and score (desc). Ties keep participant order. Only the first
// Solved submission of a user for a problem is scored; submissions of users
// outside participants are ignored.
func ComputeScoreboard(
	participants []Participant,
	submissions []models.Submission,
	problems map[uuid.UUID]ProblemInfo,
	startedAt time.Time,
) []models.ScoreEntry {
	entries := make([]models.ScoreEntry, len(participants))
	index := make(map[uuid.UUID]int, len(participants))
	for i, p := range participants {
		entries[i] = models.ScoreEntry{
			UserID:      p.UserID,
			UserName:    p.UserName,
			Submissions: []models.SubmissionSummary{},
		}
		index[p.UserID] = i
	}

	scored := make(map[uuid.UUID]map[uuid.UUID]bool, len(participants))
	for _, sub := range submissions {
		i, ok := index[sub.UserID]
		if !ok {
			continue
		}
		info := problems[sub.ProblemID]
		entries[i].Submissions = append(entries[i].Submissions, models.SubmissionSummary{
			ProblemID:         sub.ProblemID,
			ProblemTitle:      info.Title,
			ProblemDifficulty: info.Difficulty,
			Status:            sub.Status,
			SubmittedAt:       sub.SubmittedAt,
			ExecutionTime:     sub.ExecutionTime,
			TestCasesPassed:   sub.PassedCount(),
			TotalTestCases:    len(sub.Results),
		})

		if sub.Status != models.StatusSolved || scored[sub.UserID][sub.ProblemID] {
			continue
		}
		if scored[sub.UserID] == nil {
			scored[sub.UserID] = make(map[uuid.UUID]bool)
		}
		scored[sub.UserID][sub.ProblemID] = true

		secondsTaken := elapsedSeconds(startedAt, sub.SubmittedAt)
		entries[i].SolvedProblems++
		entries[i].TimeTaken += secondsTaken
		entries[i].Score += ProblemScore(info.Difficulty, secondsTaken)
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return ranksBefore(entries[a], entries[b])
	})
	return entries
}

// ProblemScore is the points a solve earns: the difficulty base minus one per
// elapsed whole minute, never below one.
func ProblemScore(difficulty models.Difficulty, secondsTaken int64) int {
	score := baseScore(difficulty) - int(secondsTaken/60)
	return max(minProblemScore, score)
}

func baseScore(difficulty models.Difficulty) int {
	switch difficulty {
	case models.DifficultyEasy:
		return baseScoreEasy
	case models.DifficultyMedium:
		return baseScoreMedium
	default:
		return baseScoreHard
	}
}

func elapsedSeconds(startedAt, submittedAt time.Time) int64 {
	d := submittedAt.Sub(startedAt)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

func ranksBefore(a, b models.ScoreEntry) bool {
	if a.SolvedProblems != b.SolvedProblems {
		return a.SolvedProblems > b.SolvedProblems
	}
	if a.TimeTaken != b.TimeTaken {
		return a.TimeTaken < b.TimeTaken
	}
	return a.Score > b.Score
}

// EntryFor returns the scoreboard entry of userID.
func EntryFor(scoreboard []models.ScoreEntry, userID uuid.UUID) (models.ScoreEntry, bool) {
	for _, e := range scoreboard {
		if e.UserID == userID {
			return e, true
		}
	}
	return models.ScoreEntry{}, false
}
