package quiz

import "time"

// Answers maps question IDs to the chosen option score.
type Answers map[string]int

type SubmitAnswers struct {
	Answers Answers `json:"answers" validate:"required"`
}

type Result struct {
	StudentID      string           `json:"student_id"`
	CategoryScores map[Category]int `json:"category_scores"`
	CompletedAt    time.Time        `json:"completed_at"` // UTC
}

// Leaning describes which side of a category a score falls on and how strongly.
type Leaning struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
	Label    string   `json:"label"`
	Level    int      `json:"level"`
	Positive bool     `json:"positive"`
}

type ResultSummary struct {
	Result
	Leanings []Leaning `json:"leanings"`
}
