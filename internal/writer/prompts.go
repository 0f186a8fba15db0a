package writer

import (
	"fmt"
	"strings"
)

const draftSystemPrompt = "You are an expert blog writer specializing in technology and business content. Respond with the post only, no preamble."

const gradeSystemPrompt = "You are an experienced AP English teacher grading blog posts. Always respond using exactly this format:\nGRADE: <letter grade A-F, optionally with + or ->\nSCORE: <number 0-100>\nFEEDBACK: <detailed feedback with specific suggestions for improvement>"

const styleBrief = `Style guidelines:
- 500 words or less
- No section headers (headers hurt dwell time)
- Flowing paragraphs that transition smoothly
- Limit each paragraph to at most two long sentences
- Strong hook in the first few sentences
- Conclusion that ties back to the opening
- Focus on actionable insights
- Include specific examples and quotes when relevant`

func draftPrompt(topic string, src Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a compelling blog post about: %s\n\n", topic)
	b.WriteString(styleBrief)
	b.WriteString("\n\nSource material:\n")
	fmt.Fprintf(&b, "Podcast: %s\nEpisode: %s\nSummary: %s\n", src.PodcastTitle, src.EpisodeTitle, src.Summary)
	if len(src.KeyTopics) > 0 {
		fmt.Fprintf(&b, "Key topics: %s\n", strings.Join(src.KeyTopics, ", "))
	}
	if len(src.Themes) > 0 {
		fmt.Fprintf(&b, "Themes: %s\n", strings.Join(src.Themes, ", "))
	}
	if len(src.Quotes) > 0 {
		fmt.Fprintf(&b, "Notable quotes:\n")
		for _, q := range src.Quotes {
			fmt.Fprintf(&b, "- %q\n", q)
		}
	}
	if len(src.Companies) > 0 {
		fmt.Fprintf(&b, "Companies mentioned: %s\n", strings.Join(src.Companies, ", "))
	}
	b.WriteString("\nOpen with a strong hook, present insights from the episode with supporting quotes, give readers actionable takeaways, and close with a thought-provoking statement that ties back to the opening.")
	return b.String()
}

func gradePrompt(topic, draft string) string {
	return fmt.Sprintf(`Grade this blog post about %q.

Evaluation criteria:
- Hook/Opening (20 points): does it grab attention immediately?
- Argument Clarity (20 points): is the main point clear and well-supported?
- Evidence and Examples (20 points): are quotes and examples used effectively?
- Paragraph Structure (20 points): do paragraphs flow smoothly with good transitions?
- Conclusion Strength (20 points): does it tie back and leave lasting impact?
- Overall Engagement (bonus/penalty): would readers stay engaged throughout?

Blog post to grade:
%s`, topic, draft)
}

func revisePrompt(topic, draft, feedback string) string {
	return fmt.Sprintf(`Revise this blog post about %q using the editor feedback below. Keep what works, fix what the feedback names.

FEEDBACK:
%s

CURRENT DRAFT:
%s`, topic, feedback, draft)
}
