package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/internal/dataset"
)

// ValidationError represents a single validation finding
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Warning is a row-level anomaly that is repaired rather than rejected
type Warning struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator checks loaded tables against the configured column mapping
type Validator struct {
	cols config.ColumnsConfig
}

// NewValidator creates a validator for the given column configuration
func NewValidator(cols config.ColumnsConfig) *Validator {
	return &Validator{cols: cols}
}

// ValidateCommentsSchema fails fast when the comments table is missing a
// required column. The article and question/answer id columns are
// alternatives: at least one addressing scheme must be present.
func (v *Validator) ValidateCommentsSchema(t *dataset.Table) error {
	if t == nil {
		return fmt.Errorf("%w: comments table is nil", dataset.ErrMissingInput)
	}

	required := []string{v.cols.UID, v.cols.CommentID, v.cols.Content}
	for _, col := range required {
		if !t.HasColumn(col) {
			return fmt.Errorf("%w: comments table has no %q column", dataset.ErrMissingInput, col)
		}
	}

	hasArticle := t.HasColumn(v.cols.ArticleID)
	hasQA := t.HasColumn(v.cols.QuestionID) && t.HasColumn(v.cols.AnswerID)
	if !hasArticle && !hasQA {
		return fmt.Errorf("%w: comments table has neither %q nor %q+%q columns",
			dataset.ErrMissingInput, v.cols.ArticleID, v.cols.QuestionID, v.cols.AnswerID)
	}

	return nil
}

// ValidateMetadataSchema fails fast when the metadata table is missing
// its content column.
func (v *Validator) ValidateMetadataSchema(t *dataset.Table) error {
	if t == nil {
		return fmt.Errorf("%w: metadata table is nil", dataset.ErrMissingInput)
	}
	if !t.HasColumn(v.cols.Content) {
		return fmt.Errorf("%w: metadata table has no %q column", dataset.ErrMissingInput, v.cols.Content)
	}
	return nil
}

// CheckCommentRows reports repairable row anomalies: blank comment ids,
// blank content and unparsable timestamps. Findings are warnings only;
// the history builder repairs these in place.
func (v *Validator) CheckCommentRows(t *dataset.Table) []Warning {
	var warnings []Warning
	for i, row := range t.Rows {
		line := i + 2 // 1-based, after the header

		if strings.TrimSpace(t.Field(row, v.cols.CommentID)) == "" {
			warnings = append(warnings, Warning{Line: line, Field: v.cols.CommentID, Message: "blank comment id"})
		}
		if strings.TrimSpace(t.Field(row, v.cols.Content)) == "" {
			warnings = append(warnings, Warning{Line: line, Field: v.cols.Content, Message: "blank content"})
		}
		if raw := strings.TrimSpace(t.Field(row, v.cols.CreatedTime)); raw != "" {
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				warnings = append(warnings, Warning{Line: line, Field: v.cols.CreatedTime, Message: "created_time is not epoch seconds"})
			}
		}
	}
	return warnings
}
