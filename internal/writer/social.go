package writer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var postMarker = regexp.MustCompile(`POST\s*\d+:`)

// SocialPosts are short-form derivatives of a written post.
type SocialPosts struct {
	Microblog    []string
	Professional []string
	Quotes       []string
	Insights     []string
}

const microblogPrompt = `Write 3 short posts (under 280 characters each) promoting this blog post. Number them exactly as "POST 1:", "POST 2:", "POST 3:".

%s`

const professionalPrompt = `Write 2 professional network posts (100-200 words each) discussing the ideas in this blog post. Number them exactly as "POST 1:", "POST 2:".

%s`

// Social derives social posts from a written post. Extraction failure on one
// channel leaves that channel empty rather than failing the whole call.
func (w *Writer) Social(ctx context.Context, post *Post) *SocialPosts {
	social := &SocialPosts{
		Quotes:   extractQuotes(post.Body, 3),
		Insights: extractInsights(post.Body, 5),
	}

	if resp, err := w.gen.Generate(ctx, draftSystemPrompt, fmt.Sprintf(microblogPrompt, post.Body)); err != nil {
		w.logger.Warn("microblog post generation failed", zap.Error(err))
	} else {
		social.Microblog = parsePosts(resp)
	}

	if resp, err := w.gen.Generate(ctx, draftSystemPrompt, fmt.Sprintf(professionalPrompt, post.Body)); err != nil {
		w.logger.Warn("professional post generation failed", zap.Error(err))
	} else {
		social.Professional = parsePosts(resp)
	}
	return social
}

// parsePosts splits a response on "POST n:" markers. A response without
// markers yields an empty list.
func parsePosts(response string) []string {
	marks := postMarker.FindAllStringIndex(response, -1)
	posts := make([]string, 0, len(marks))
	for i, m := range marks {
		end := len(response)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		text := strings.TrimSpace(response[m[1]:end])
		if text != "" {
			posts = append(posts, text)
		}
	}
	return posts
}

var quotedText = regexp.MustCompile(`"([^"]{20,200})"`)

// extractQuotes pulls up to n quotable passages out of the post body.
func extractQuotes(body string, n int) []string {
	quotes := []string{}
	for _, m := range quotedText.FindAllStringSubmatch(body, -1) {
		quotes = append(quotes, m[1])
		if len(quotes) >= n {
			break
		}
	}
	return quotes
}

var insightWords = []string{"key", "important", "crucial", "insight"}

// extractInsights pulls up to n tweetable-length sentences that flag a
// takeaway.
func extractInsights(body string, n int) []string {
	insights := []string{}
	for _, sentence := range strings.Split(body, ". ") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 50 || len(sentence) >= 280 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, word := range insightWords {
			if strings.Contains(lower, word) {
				insights = append(insights, strings.TrimSuffix(sentence, ".")+".")
				break
			}
		}
		if len(insights) >= n {
			break
		}
	}
	return insights
}
