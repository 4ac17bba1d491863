// Package scoring holds the pure answer grading and session math. Nothing in
// here touches storage; callers validate input shape before grading.
package scoring

import (
	"math"
	"strings"

	"github.com/quizforge/quiz_api/shared"
)

// GradedQuestion is the slice of a question the grader needs.
type GradedQuestion struct {
	Type           string
	CorrectAnswers []string
	Points         int
}

// Grade decides correctness of a submission and the points awarded.
// single/boolean: exactly one submitted element, member of the correct set.
// multiple: submission and correct set must be equal as sets.
// text: any submitted answer matches any correct answer, case-insensitive
// and whitespace-trimmed.
func Grade(q GradedQuestion, submitted []string) (bool, int) {
	correct := false

	switch q.Type {
	case shared.QuestionTypeSingle, shared.QuestionTypeBoolean:
		if len(submitted) == 1 {
			for _, answer := range q.CorrectAnswers {
				if submitted[0] == answer {
					correct = true
					break
				}
			}
		}
	case shared.QuestionTypeMultiple:
		correct = equalAsSets(submitted, q.CorrectAnswers)
	case shared.QuestionTypeText:
		for _, s := range submitted {
			for _, answer := range q.CorrectAnswers {
				if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(answer)) {
					correct = true
					break
				}
			}
			if correct {
				break
			}
		}
	}

	if !correct {
		return false, 0
	}

	points := q.Points
	if points <= 0 {
		points = 1
	}
	return true, points
}

func equalAsSets(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	if len(set) != len(b) {
		return false
	}
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

// Accuracy returns the percentage of correct answers rounded half away from
// zero to 2 decimals. Zero answers yields 0, not NaN.
func Accuracy(correctCount, totalAnswers int) float64 {
	if totalAnswers == 0 {
		return 0
	}
	pct := float64(correctCount) / float64(totalAnswers) * 100
	return math.Round(pct*100) / 100
}

// SpeedBonus reports whether a completed session beat 75% of the fixed
// 30s-per-question time budget.
func SpeedBonus(timeSpentSeconds, answeredQuestions int) bool {
	if answeredQuestions == 0 {
		return false
	}
	budget := float64(answeredQuestions * shared.QuestionTimeBudgetSeconds)
	return float64(timeSpentSeconds) < 0.75*budget
}

// SpeedDemon is the stricter threshold used by the speed achievement: under
// half of the time budget for the whole quiz.
func SpeedDemon(timeSpentSeconds, totalQuestions int) bool {
	if totalQuestions == 0 {
		return false
	}
	budget := float64(totalQuestions * shared.QuestionTimeBudgetSeconds)
	return float64(timeSpentSeconds) < 0.5*budget
}
