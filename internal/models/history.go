package models

// UserHistory is the full nested activity record for one user: every
// content item the user commented on, each carrying its comment groups.
// Built once per user per run and never mutated afterwards.
type UserHistory struct {
	UID      string        `json:"uid"`
	Articles []ContentItem `json:"articles"`
}

// ContentItem is an article or question/answer pair that received at
// least one comment from the target user. The JSON field names keep the
// article-flavored legacy output format for both addressing schemes.
type ContentItem struct {
	ID       string         `json:"article_id"`
	Content  string         `json:"article_content"`
	Images   []string       `json:"article_images"`
	Videos   []string       `json:"article_videos"`
	Comments []CommentGroup `json:"comments"`
}

// RootGroupID keys the group of top-level comments on a content item
const RootGroupID = "root"

// CommentGroup holds the user's comments sharing one parent comment.
// ParentContent is empty for the root group and for parents missing
// from the source table.
type CommentGroup struct {
	ParentID      string  `json:"parent_comment_id"`
	ParentContent string  `json:"parent_comment"`
	Content       []Reply `json:"content"`
}

// Reply is a single comment by the user. CreatedTime is the rendered
// "YYYY-MM-DD HH:MM:SS" form of the source epoch timestamp, or null
// when the source row carried none.
type Reply struct {
	CommentID   string   `json:"comment_id"`
	Content     string   `json:"content"`
	CreatedTime *string  `json:"created_time"`
	Images      []string `json:"images"`
	Videos      []string `json:"videos"`
}

// TotalReplies returns the reply count across all comment groups
func (c *ContentItem) TotalReplies() int {
	total := 0
	for _, g := range c.Comments {
		total += len(g.Content)
	}
	return total
}
