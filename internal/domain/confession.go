package domain

import "fmt"

// Confession is one spreadsheet submission. RowNum is the 1-based sheet row
// and stays stable for the whole run; Timestamp is the free-form locale
// string from the form and is only used as a secondary identifier.
type Confession struct {
	RowNum    int    `json:"row_num"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// Label returns the identity used for artifact filenames.
func (c Confession) Label() string {
	return fmt.Sprintf("confession_%d", c.RowNum)
}

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentMixed    Sentiment = "Mixed"
	SentimentUnknown  Sentiment = "Unknown"
)

func (s Sentiment) String() string {
	return string(s)
}

// ModerationResult is the JSON contract returned by the moderation model.
type ModerationResult struct {
	Safe            bool      `json:"is_safe"`
	RejectionReason string    `json:"rejection_reason"`
	Sentiment       Sentiment `json:"sentiment"`
	SummaryCaption  string    `json:"summary_caption"`
	RedactedText    string    `json:"original_text"`
}

// Moderated pairs a confession with its moderation outcome. The base record
// is never mutated; each pipeline stage wraps it instead.
type Moderated struct {
	Confession
	Moderation ModerationResult
}

// PostText returns the text that actually gets rendered: the model's
// identifier-redacted version when present, the raw submission otherwise.
func (m Moderated) PostText() string {
	if m.Moderation.RedactedText != "" {
		return m.Moderation.RedactedText
	}
	return m.Text
}

// Candidate is a moderated confession that survived ranking and has been
// assigned its public display number.
type Candidate struct {
	Moderated
	DisplayCount int
}
