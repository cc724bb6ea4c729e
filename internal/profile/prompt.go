package profile

import (
	"fmt"
	"strings"

	"github.com/comment-profiler/internal/models"
)

// Prompt assembly caps. The model only needs a sample of the user's
// activity; these bounds keep token usage predictable on heavy users.
const (
	maxPromptArticles      = 2
	maxPromptComments      = 8
	maxRepliesPerGroup     = 3
	maxPromptImages        = 3
	maxPromptVideos        = 2
	promptContentTruncateN = 200
)

// BuildContentSummary renders a capped plain-text digest of the user's
// history: up to maxPromptArticles content items, with up to
// maxRepliesPerGroup replies per comment group and maxPromptComments
// replies overall.
func BuildContentSummary(articles []models.ContentItem) string {
	var parts []string

	for i, article := range articles {
		if i >= maxPromptArticles {
			break
		}

		if article.Content != "" {
			parts = append(parts, fmt.Sprintf("Post %d:", i+1))
			parts = append(parts, article.Content)
		}

		if len(article.Comments) > 0 {
			parts = append(parts, "Comments on this post:")
			count := 0
			for _, group := range article.Comments {
				for j, reply := range group.Content {
					if j >= maxRepliesPerGroup {
						break
					}
					if reply.Content == "" {
						continue
					}
					if group.ParentContent != "" {
						parts = append(parts, fmt.Sprintf("Reply to %q: %s", truncate(group.ParentContent, promptContentTruncateN), reply.Content))
					} else {
						parts = append(parts, "Comment: "+reply.Content)
					}
					count++
					if count >= maxPromptComments {
						break
					}
				}
				if count >= maxPromptComments {
					break
				}
			}
		}

		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

// CollectImageURLs gathers every image URL in the history, deduplicated,
// keeping only absolute http(s) URLs.
func CollectImageURLs(articles []models.ContentItem) []string {
	return collectURLs(articles, func(c models.ContentItem) []string { return c.Images },
		func(r models.Reply) []string { return r.Images })
}

// CollectVideoURLs gathers every video URL in the history, deduplicated,
// keeping only absolute http(s) URLs.
func CollectVideoURLs(articles []models.ContentItem) []string {
	return collectURLs(articles, func(c models.ContentItem) []string { return c.Videos },
		func(r models.Reply) []string { return r.Videos })
}

func collectURLs(articles []models.ContentItem, fromItem func(models.ContentItem) []string,
	fromReply func(models.Reply) []string) []string {

	seen := make(map[string]bool)
	var urls []string
	add := func(candidates []string) {
		for _, u := range candidates {
			if u == "" || !strings.HasPrefix(u, "http") || seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}

	for _, article := range articles {
		add(fromItem(article))
		for _, group := range article.Comments {
			for _, reply := range group.Content {
				add(fromReply(reply))
			}
		}
	}
	return urls
}

const promptDimensions = `Analyze the user along these dimensions and answer as JSON:

1. stance: the user's position on the discussed event (supportive / critical / neutral / unclear)
2. emotion: dominant emotional tendencies (anger, sympathy, rational, indifferent, worried, sad, ...; at most 3 words)
3. perspective: main angles of concern (technical safety, corporate responsibility, user education, legal liability, industry trends, media coverage, ...; at most 3)
4. style: expression style (objective, emotional, analytical, sharing/reposting, skeptical, ...; at most 2)
5. engagement: level of participation (highly engaged / casually engaged / incidental mention)
6. info_tendency: preferred information sources (official statements / media reports / personal opinions / expert analysis)
7. media_usage: media usage pattern (no media / occasional images / frequent images / video sharing / mixed media)

Requirements:
- Answer each dimension with short keywords, not sentences
- Ground the analysis in the actual content; do not speculate
- Use "insufficient data" when a dimension cannot be judged
- Output strictly the JSON object, nothing else

Output format:
{
    "uid": "%s",
    "stance": "neutral",
    "emotion": ["worried", "rational"],
    "perspective": ["technical safety", "user education"],
    "style": ["objective"],
    "engagement": "highly engaged",
    "info_tendency": "media reports",
    "media_usage": "occasional images"
}`

// textPrompt builds the text-only analysis prompt. Media are counted but
// their content is not analyzed.
func textPrompt(uid, summary string, imageCount, videoCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following social-media posts and comments by one user, analyze the user's profile.\n\n")
	fmt.Fprintf(&b, "User ID: %s\n\n", uid)
	fmt.Fprintf(&b, "User content:\n%s\n\n", summary)
	fmt.Fprintf(&b, "Shared media (counts only, content not analyzed):\n- images: %d\n- videos: %d\n\n", imageCount, videoCount)
	fmt.Fprintf(&b, promptDimensions, uid)
	return b.String()
}

// multimodalPrompt builds the prompt for image-capable models. Images are
// attached inline by the caller; video URLs ride in the text since
// chat-completion content parts have no video variant.
func multimodalPrompt(uid, summary string, videoURLs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following social-media posts, comments and shared images by one user, analyze the user's profile.\n\n")
	fmt.Fprintf(&b, "User ID: %s\n\n", uid)
	fmt.Fprintf(&b, "User content:\n%s\n\n", summary)
	if len(videoURLs) > 0 {
		fmt.Fprintf(&b, "Shared videos (URLs, content not attached):\n")
		for _, u := range videoURLs {
			fmt.Fprintf(&b, "- %s\n", u)
		}
		fmt.Fprintf(&b, "\n")
	}
	fmt.Fprintf(&b, promptDimensions, uid)
	return b.String()
}

// StripCodeFence removes a surrounding markdown code fence from a model
// response, preferring an explicit ```json block.
func StripCodeFence(s string) string {
	if i := strings.Index(s, "```json"); i >= 0 {
		start := i + len("```json")
		if end := strings.Index(s[start:], "```"); end >= 0 {
			return strings.TrimSpace(s[start : start+end])
		}
		return strings.TrimSpace(s[start:])
	}
	if i := strings.Index(s, "```"); i >= 0 {
		start := i + len("```")
		if end := strings.LastIndex(s, "```"); end > start {
			return strings.TrimSpace(s[start:end])
		}
		return strings.TrimSpace(s[start:])
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
