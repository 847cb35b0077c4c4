package models

// Answer is the candidate's recorded choice for one question. Last write wins.
type Answer struct {
	Answer           string `json:"answer"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

// DefaultUnansweredSeconds is the time figure an unanswered question contributes to scoring.
const DefaultUnansweredSeconds = 30
