package prompt

import (
	"fmt"
	"strings"

	"github.com/iitkqc/confession-bot-go/internal/domain"
)

// BuildSelectionPrompt builds the curation prompt that ranks moderated
// confessions. The model answers with a JSON array of 1-based indices into
// the listed order.
func BuildSelectionPrompt(community string, confessions []domain.Moderated, maxCount int) string {
	entries := make([]string, len(confessions))
	for i, conf := range confessions {
		entries[i] = fmt.Sprintf("Confession %d:\n%s\nSentiment: %s",
			i+1, conf.PostText(), conf.Moderation.Sentiment)
	}

	return fmt.Sprintf(`You are an expert social media content curator for %[1]s. Your task is to select the most engaging confessions from the list below that will resonate deeply with the %[1]s student body and are suitable for public sharing within the community.

**Selection criteria:**
* **Relevance & Resonance:** The confession should deeply connect with student life at %[1]s. Look for content that highlights:
    * Campus-specific experiences (convocation, yearbooks, fests, specific campus locations).
    * Struggles or triumphs related to courses, professors, exams, placements, clubs, or inter-hall competitions.
    * Inside jokes or common student observations unique to the campus.
    * Hostel life, residential hall experiences, or campus infrastructure issues.
* **Engagement Potential:** The best confessions will naturally spark discussion, foster relatability, or have the potential to go viral. Consider if the confession is humorous or emotionally impactful, and likely to draw a wide range of responses.
* **Tone & Appropriateness:** Constructive or humorous criticism of the institute, professors, or student bodies is fine. Strictly avoid any content that involves hate speech, harassment, personal attacks, or sexually explicit material.
* **Diversity in Content:** Aim for a good mix of diverse tones and topics. Balance funny, serious, and deeply relatable submissions.

Review the following confessions:

%[2]s

Select up to %[3]d confessions that best fit the criteria above.
Respond ONLY with a JSON array of the 1-based indices of your selections, e.g.: [2, 5, 1, 4]`,
		community,
		strings.Join(entries, "\n\n"),
		maxCount)
}
