package domain

import (
	"fmt"
	"math"
)

// Summary is the end-of-session result shown on the results screen.
type Summary struct {
	Score              int            `json:"score"`
	TotalQuestions     int            `json:"totalQuestions"`
	IncorrectCount     int            `json:"incorrectCount"`
	Percentage         int            `json:"percentage"`
	BestStreak         int            `json:"bestStreak"`
	AverageTimeSeconds int            `json:"averageTimeSeconds"`
	Tier               Tier           `json:"tier"`
	ShareText          string         `json:"shareText"`
	Answers            []AnswerRecord `json:"answers"`
}

// Tier is the performance bucket selected by percentage score.
type Tier struct {
	MinPercentage int    `json:"-"`
	Message       string `json:"message"`
	Severity      string `json:"severity"`
}

// tiers is scanned top-down; the first entry whose minimum is <= percentage
// wins. The 0 entry is the catch-all so a tier is always found.
var tiers = []Tier{
	{MinPercentage: 90, Message: "excellent", Severity: "success"},
	{MinPercentage: 80, Message: "very good", Severity: "success"},
	{MinPercentage: 70, Message: "good", Severity: "info"},
	{MinPercentage: 60, Message: "fair", Severity: "warning"},
	{MinPercentage: 0, Message: "poor", Severity: "error"},
}

// TierFor selects the performance tier for a percentage score.
func TierFor(percentage int) Tier {
	for _, tier := range tiers {
		if tier.MinPercentage <= percentage {
			return tier
		}
	}
	return tiers[len(tiers)-1]
}

// Summarize computes the results for a finished session. The average over
// zero answers is defined as 0.
func Summarize(answers []AnswerRecord, total, bestStreak int) Summary {
	score := 0
	timeSpent := 0
	for _, record := range answers {
		if record.IsCorrect {
			score++
		}
		timeSpent += record.TimeSpentSeconds
	}

	percentage := 0
	if total > 0 {
		percentage = int(math.Round(100 * float64(score) / float64(total)))
	}
	averageTime := 0
	if len(answers) > 0 {
		averageTime = int(math.Round(float64(timeSpent) / float64(len(answers))))
	}

	return Summary{
		Score:              score,
		TotalQuestions:     total,
		IncorrectCount:     total - score,
		Percentage:         percentage,
		BestStreak:         bestStreak,
		AverageTimeSeconds: averageTime,
		Tier:               TierFor(percentage),
		ShareText:          fmt.Sprintf("I scored %d/%d (%d%%) on the trivia quiz!", score, total, percentage),
		Answers:            answers,
	}
}
