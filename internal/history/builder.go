package history

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrNoDataForUser signals a uid with zero rows in the comments table
	ErrNoDataForUser = errors.New("no data for user")

	// ErrNoContentIdentifier signals comment rows carrying neither an
	// article id nor a (question id, answer id) pair.
	ErrNoContentIdentifier = errors.New("no content identifier")
)

// timeLayout renders epoch timestamps as local-naive date-times. The
// format is lexicographically ordered, so the sort below can compare
// rendered strings directly.
const timeLayout = "2006-01-02 15:04:05"

// Builder assembles per-user history records from a metadata table and a
// comments table. Both tables are treated as read-only; every Build call
// materializes a fresh record.
//
// Replies missing a created_time sort before dated ones, both within a
// group and when ordering groups by their first reply.
type Builder struct {
	cols config.ColumnsConfig
	log  zerolog.Logger
}

// NewBuilder creates a history Builder using the given column mapping
func NewBuilder(cols config.ColumnsConfig, log zerolog.Logger) *Builder {
	return &Builder{
		cols: cols,
		log:  log.With().Str("component", "history").Logger(),
	}
}

// Build assembles the history record for one user.
//
// It fails with dataset.ErrMissingInput when a required table or the uid
// column is absent, ErrNoDataForUser when the user has no comments, and
// ErrNoContentIdentifier when the user's rows carry no usable content
// addressing. Row-level anomalies (blank text, unparsable timestamps or
// media lists) are repaired in place with a logged warning.
func (b *Builder) Build(meta, comments *dataset.Table, uid string) (*models.UserHistory, error) {
	if comments == nil {
		return nil, fmt.Errorf("%w: comments table is nil", dataset.ErrMissingInput)
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: metadata table is nil", dataset.ErrMissingInput)
	}
	if !comments.HasColumn(b.cols.UID) {
		return nil, fmt.Errorf("%w: comments table has no %q column", dataset.ErrMissingInput, b.cols.UID)
	}

	var rows [][]string
	for _, row := range comments.Rows {
		if comments.Field(row, b.cols.UID) == uid {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataForUser, uid)
	}

	scheme := b.detectScheme(comments, rows)
	if scheme == schemeNone {
		return nil, fmt.Errorf("%w: uid %s", ErrNoContentIdentifier, uid)
	}

	// Parent text lookups go against the full comments table, not just
	// this user's rows.
	parentText := b.indexCommentText(comments)

	history := &models.UserHistory{UID: uid, Articles: []models.ContentItem{}}
	seen := make(map[string]bool)
	for _, row := range rows {
		id := b.contentID(comments, row, scheme)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		item := b.buildContentItem(meta, comments, rows, id, scheme, uid, parentText)
		history.Articles = append(history.Articles, item)
	}

	return history, nil
}

type addressingScheme int

const (
	schemeNone addressingScheme = iota
	schemeArticle
	schemeQA
)

// detectScheme picks the content addressing scheme from the user's rows:
// a populated article-id column wins, then a populated question/answer
// pair.
func (b *Builder) detectScheme(t *dataset.Table, rows [][]string) addressingScheme {
	if t.HasColumn(b.cols.ArticleID) {
		for _, row := range rows {
			if strings.TrimSpace(t.Field(row, b.cols.ArticleID)) != "" {
				return schemeArticle
			}
		}
	}
	if t.HasColumn(b.cols.QuestionID) && t.HasColumn(b.cols.AnswerID) {
		for _, row := range rows {
			if strings.TrimSpace(t.Field(row, b.cols.QuestionID)) != "" &&
				strings.TrimSpace(t.Field(row, b.cols.AnswerID)) != "" {
				return schemeQA
			}
		}
	}
	return schemeNone
}

// contentID returns the content key of a comment row: the article id, or
// the concatenated (question id, answer id) composite.
func (b *Builder) contentID(t *dataset.Table, row []string, scheme addressingScheme) string {
	switch scheme {
	case schemeArticle:
		return strings.TrimSpace(t.Field(row, b.cols.ArticleID))
	case schemeQA:
		q := strings.TrimSpace(t.Field(row, b.cols.QuestionID))
		a := strings.TrimSpace(t.Field(row, b.cols.AnswerID))
		if q == "" && a == "" {
			return ""
		}
		return q + a
	}
	return ""
}

func (b *Builder) buildContentItem(meta, comments *dataset.Table, userRows [][]string,
	id string, scheme addressingScheme, uid string, parentText map[string]string) models.ContentItem {

	item := models.ContentItem{
		ID:     id,
		Images: []string{},
		Videos: []string{},
	}

	// First matching metadata row supplies text and media; a missing row
	// degrades to an empty item rather than failing the build.
	if row, ok := b.findMetadata(meta, id, scheme); ok {
		item.Content = normalizeText(meta.Field(row, b.cols.Content))
		item.Images = ParseMediaList(meta.Field(row, b.cols.ImgURLs))
		item.Videos = ParseMediaList(meta.Field(row, b.cols.VideoURLs))
	} else {
		b.log.Warn().Str("uid", uid).Str("content_id", id).Msg("No metadata row for content item")
	}

	// Group this content item's comments by parent id, "root" for
	// top-level comments. Group insertion order is first-seen; the final
	// order is fixed by the sort below.
	groups := make(map[string]*models.CommentGroup)
	var order []string
	for _, row := range userRows {
		if b.contentID(comments, row, scheme) != id {
			continue
		}

		parentID := strings.TrimSpace(comments.Field(row, b.cols.ParentCommentID))
		key := parentID
		if key == "" {
			key = models.RootGroupID
		}

		group, ok := groups[key]
		if !ok {
			group = &models.CommentGroup{ParentID: key, Content: []models.Reply{}}
			if key != models.RootGroupID {
				group.ParentContent = parentText[parentID]
			}
			groups[key] = group
			order = append(order, key)
		}

		group.Content = append(group.Content, b.buildReply(comments, row, uid))
	}

	item.Comments = make([]models.CommentGroup, 0, len(order))
	for _, key := range order {
		group := groups[key]
		sortReplies(group.Content)
		item.Comments = append(item.Comments, *group)
	}
	sortGroups(item.Comments)

	return item
}

// findMetadata locates the first metadata row for a content id
func (b *Builder) findMetadata(meta *dataset.Table, id string, scheme addressingScheme) ([]string, bool) {
	for _, row := range meta.Rows {
		switch scheme {
		case schemeArticle:
			if strings.TrimSpace(meta.Field(row, b.cols.ArticleID)) == id {
				return row, true
			}
		case schemeQA:
			q := strings.TrimSpace(meta.Field(row, b.cols.QuestionID))
			a := strings.TrimSpace(meta.Field(row, b.cols.AnswerID))
			if q+a == id {
				return row, true
			}
		}
	}
	return nil, false
}

func (b *Builder) buildReply(comments *dataset.Table, row []string, uid string) models.Reply {
	reply := models.Reply{
		CommentID: strings.TrimSpace(comments.Field(row, b.cols.CommentID)),
		Content:   normalizeText(comments.Field(row, b.cols.Content)),
		Images:    ParseMediaList(comments.Field(row, b.cols.ImgURLs)),
		Videos:    ParseMediaList(comments.Field(row, b.cols.VideoURLs)),
	}

	if reply.Content == "" {
		b.log.Warn().Str("uid", uid).Str("comment_id", reply.CommentID).Msg("Comment has no content")
	}

	raw := strings.TrimSpace(comments.Field(row, b.cols.CreatedTime))
	if raw != "" {
		rendered, err := renderTimestamp(raw)
		if err != nil {
			b.log.Warn().Str("uid", uid).Str("comment_id", reply.CommentID).
				Str("created_time", raw).Msg("Unparsable created_time, treating as absent")
		} else {
			reply.CreatedTime = &rendered
		}
	}

	return reply
}

// indexCommentText maps comment_id to comment text over the full table
func (b *Builder) indexCommentText(comments *dataset.Table) map[string]string {
	index := make(map[string]string, len(comments.Rows))
	for _, row := range comments.Rows {
		id := strings.TrimSpace(comments.Field(row, b.cols.CommentID))
		if id == "" {
			continue
		}
		if _, ok := index[id]; !ok {
			index[id] = normalizeText(comments.Field(row, b.cols.Content))
		}
	}
	return index
}

// renderTimestamp converts epoch seconds (integer or float text) into
// the local-naive date-time form.
func renderTimestamp(raw string) (string, error) {
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return "", err
		}
		sec = int64(f)
	}
	return time.Unix(sec, 0).Format(timeLayout), nil
}

// normalizeText repairs missing comment/article text: blank values and
// the literal NaN markers pandas-era exports leave behind become "".
func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

func replyTimeKey(r models.Reply) string {
	if r.CreatedTime == nil {
		return ""
	}
	return *r.CreatedTime
}

// sortReplies orders replies by created_time ascending; replies without
// one sort first ("" compares below every rendered date-time).
func sortReplies(replies []models.Reply) {
	sort.SliceStable(replies, func(i, j int) bool {
		return replyTimeKey(replies[i]) < replyTimeKey(replies[j])
	})
}

// sortGroups orders comment groups by the created_time of their first
// reply, ascending, empty first.
func sortGroups(groups []models.CommentGroup) {
	key := func(g models.CommentGroup) string {
		if len(g.Content) == 0 {
			return ""
		}
		return replyTimeKey(g.Content[0])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return key(groups[i]) < key(groups[j])
	})
}
