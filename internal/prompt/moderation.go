package prompt

import "fmt"

// BuildModerationPrompt builds the per-confession safety and enrichment
// prompt. The model must answer with exactly the JSON object described here;
// the keys line up with domain.ModerationResult.
func BuildModerationPrompt(confessionText string) string {
	return fmt.Sprintf(`Analyze the following confession text for hate speech, harassment, sexually explicit content, and dangerous content.
Also, determine its overall sentiment (Positive, Negative, Neutral, Mixed) and provide a concise summary (max 50 words) suitable for an Instagram caption along with some hashtags.

Confession Text:
"%s"

Output a JSON object with the following keys:
- "is_safe": boolean (true if no major safety violations, false otherwise)
- "rejection_reason": string (brief reason if not safe, empty string if safe)
- "sentiment": string (Positive, Negative, Neutral, Mixed)
- "summary_caption": string (concise summary suitable for Instagram along with some hashtags, max 50 words)
- "original_text": string (Original text with personal identifiers replaced by ****.)`,
		confessionText)
}
