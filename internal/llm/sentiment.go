package llm

import (
	"context"
	"fmt"
	"strings"
)

// Sentiment classifications for campaign replies.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// classificationTemperature keeps sentiment labels stable across runs.
const classificationTemperature = 0.1

// ClassifySentiment labels a campaign reply for sales purposes. Unknown or
// malformed model output normalizes to neutral rather than erroring.
func ClassifySentiment(ctx context.Context, client Client, replyText string) (string, error) {
	prompt := fmt.Sprintf(`Analyze this email reply and categorize it as positive, negative, or neutral for sales purposes:

Reply: %q

Positive = Interested, asking questions, wants to learn more, scheduling meetings
Negative = Not interested, unsubscribe requests, harsh rejections
Neutral = Out of office, general acknowledgment, unclear intent

Respond with only one word: positive, negative, or neutral`, replyText)

	out, err := client.GenerateContent(ctx, prompt, TierLite, classificationTemperature)
	if err != nil {
		return SentimentNeutral, err
	}

	switch s := strings.ToLower(strings.TrimSpace(out)); s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return s, nil
	default:
		return SentimentNeutral, nil
	}
}

// positive phrasings checked before single keywords so "not interested" does
// not match "interested".
var negativePhrases = []string{"not interested", "no thanks", "unsubscribe", "remove me", "stop emailing", "don't contact"}

var positiveKeywords = []string{"interested", "tell me more", "sounds good", "let's talk", "schedule", "call", "demo", "pricing", "learn more"}

// KeywordSentiment is the offline fallback classifier, used when no model
// client is configured. Strictly coarser than the model but deterministic.
func KeywordSentiment(replyText string) string {
	text := strings.ToLower(replyText)
	for _, p := range negativePhrases {
		if strings.Contains(text, p) {
			return SentimentNegative
		}
	}
	for _, k := range positiveKeywords {
		if strings.Contains(text, k) {
			return SentimentPositive
		}
	}
	return SentimentNeutral
}
