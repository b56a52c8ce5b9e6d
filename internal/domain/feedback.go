package domain

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three known sentiments.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// FeedbackAnalysis is the structured reading of a user's feedback text.
type FeedbackAnalysis struct {
	AdherenceScore  float64   `json:"adherence_score"`
	PositiveAspects []string  `json:"positive_aspects"`
	NegativeAspects []string  `json:"negative_aspects"`
	Sentiment       Sentiment `json:"sentiment"`
	Suggestions     []string  `json:"suggestions"`
}

// FeedbackRecord is feedback a user gave for the plan of one date.
type FeedbackRecord struct {
	UserID    string           `json:"user_id"`
	Date      time.Time        `json:"date"`
	Text      string           `json:"feedback_text"`
	Analysis  FeedbackAnalysis `json:"analysis"`
	CreatedAt time.Time        `json:"created_at"`
}
