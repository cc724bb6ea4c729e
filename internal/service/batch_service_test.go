package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/models"
	"github.com/comment-profiler/internal/service"
	"github.com/comment-profiler/internal/store"
	"github.com/rs/zerolog"
)

// fakeGenerator returns canned profiles without touching any endpoint.
// UIDs listed in failUIDs come back as error profiles.
type fakeGenerator struct {
	calls    int
	failUIDs map[string]bool
}

func (f *fakeGenerator) Generate(ctx context.Context, h *models.UserHistory, multimodal bool) *models.Profile {
	f.calls++
	if f.failUIDs[h.UID] {
		return &models.Profile{UID: h.UID, Error: "model refused"}
	}
	return &models.Profile{UID: h.UID, Stance: "neutral", Engagement: "casually engaged"}
}

func testConfig() *config.Config {
	return &config.Config{
		Columns: config.ColumnsConfig{
			UID:             "uid",
			ArticleID:       "article_id",
			CommentID:       "comment_id",
			ParentCommentID: "parent_comment_id",
			Content:         "content",
			ImgURLs:         "img_urls",
			VideoURLs:       "video_urls",
			CreatedTime:     "created_time",
			QuestionID:      "question_id",
			AnswerID:        "answer_id",
		},
		Batch: config.BatchConfig{
			CheckpointEvery: 2,
			Strategy:        dataset.StrategyTop,
			UserCount:       10,
			RandomSeed:      42,
			OutputDir:       os.TempDir(),
		},
	}
}

func batchTables() (*dataset.Table, *dataset.Table) {
	cols := []string{"uid", "article_id", "comment_id", "parent_comment_id", "content", "created_time"}
	comments := dataset.New(cols, [][]string{
		{"u1", "a1", "c1", "", "comment one", "100"},
		{"u1", "a1", "c2", "", "comment two", "200"},
		{"u2", "a1", "c3", "", "another voice", "300"},
		{"u3", "", "c4", "", "no article reference", "400"},
	})
	meta := dataset.New([]string{"article_id", "content"}, [][]string{{"a1", "the story"}})
	return comments, meta
}

func newTestServices(gen service.ProfileGenerator, cfg *config.Config) *service.Services {
	return service.NewServices(store.NewDatasetRegistry(), store.NewJobStore(), gen, cfg, zerolog.Nop())
}

func TestGenerateProfilesSkipsAndFails(t *testing.T) {
	comments, meta := batchTables()
	gen := &fakeGenerator{failUIDs: map[string]bool{"u2": true}}
	svc := newTestServices(gen, testConfig())

	profiles, skipped, err := svc.Batch.GenerateProfiles(context.Background(), meta, comments, service.BatchOptions{
		Strategy: dataset.StrategyTop,
		Count:    10,
	})
	if err != nil {
		t.Fatalf("GenerateProfiles failed: %v", err)
	}

	// u3 has no content identifier and is skipped before generation.
	if len(skipped) != 1 || skipped[0].UID != "u3" {
		t.Errorf("expected u3 skipped, got %v", skipped)
	}
	if gen.calls != 2 {
		t.Errorf("expected 2 generator calls, got %d", gen.calls)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}

	byUID := map[string]*models.Profile{}
	for _, p := range profiles {
		byUID[p.UID] = p
	}
	if byUID["u1"].Failed() {
		t.Errorf("u1 should succeed: %+v", byUID["u1"])
	}
	if !byUID["u2"].Failed() {
		t.Errorf("u2 should carry the generation error: %+v", byUID["u2"])
	}
}

func TestGenerateProfilesCheckpointCadence(t *testing.T) {
	cols := []string{"uid", "article_id", "comment_id", "parent_comment_id", "content", "created_time"}
	var rows [][]string
	for i := 0; i < 5; i++ {
		uid := fmt.Sprintf("u%d", i)
		// Row counts descend so top-N order is deterministic.
		for j := 0; j <= 5-i; j++ {
			rows = append(rows, []string{uid, "a1", fmt.Sprintf("%s-c%d", uid, j), "", "text", "100"})
		}
	}
	comments := dataset.New(cols, rows)
	meta := dataset.New([]string{"article_id", "content"}, [][]string{{"a1", "the story"}})

	var checkpoints [][]string
	svc := newTestServices(&fakeGenerator{}, testConfig())

	profiles, _, err := svc.Batch.GenerateProfiles(context.Background(), meta, comments, service.BatchOptions{
		Strategy: dataset.StrategyTop,
		Count:    5,
		Checkpoint: func(partial []*models.Profile) error {
			uids := make([]string, len(partial))
			for i, p := range partial {
				uids[i] = p.UID
			}
			checkpoints = append(checkpoints, uids)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("GenerateProfiles failed: %v", err)
	}
	if len(profiles) != 5 {
		t.Fatalf("expected 5 profiles, got %d", len(profiles))
	}

	// CheckpointEvery is 2: snapshots at 2 and 4 appended profiles.
	if len(checkpoints) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(checkpoints))
	}
	if len(checkpoints[0]) != 2 || len(checkpoints[1]) != 4 {
		t.Errorf("unexpected checkpoint sizes: %d and %d", len(checkpoints[0]), len(checkpoints[1]))
	}
}

func TestGenerateProfilesInvalidStrategy(t *testing.T) {
	comments, meta := batchTables()
	svc := newTestServices(&fakeGenerator{}, testConfig())

	_, _, err := svc.Batch.GenerateProfiles(context.Background(), meta, comments, service.BatchOptions{
		Strategy: "alphabetical",
		Count:    10,
	})
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestGenerateProfilesCancelledContext(t *testing.T) {
	comments, meta := batchTables()
	svc := newTestServices(&fakeGenerator{}, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.Batch.GenerateProfiles(ctx, meta, comments, service.BatchOptions{
		Strategy: dataset.StrategyTop,
		Count:    10,
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuildHistories(t *testing.T) {
	comments, meta := batchTables()
	svc := newTestServices(&fakeGenerator{}, testConfig())

	histories, skipped, err := svc.Batch.BuildHistories(context.Background(), meta, comments, service.BatchOptions{
		Strategy: dataset.StrategyTop,
		Count:    10,
	})
	if err != nil {
		t.Fatalf("BuildHistories failed: %v", err)
	}
	if len(histories) != 2 {
		t.Fatalf("expected 2 histories, got %d", len(histories))
	}
	if histories[0].UID != "u1" {
		t.Errorf("expected most active user first, got %q", histories[0].UID)
	}
	if len(skipped) != 1 {
		t.Errorf("expected u3 skipped, got %v", skipped)
	}
}

func TestWriteJSONOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	profiles := []*models.Profile{
		{UID: "u1", Stance: "neutral", Perspective: []string{"corporate responsibility & ethics"}},
	}

	if err := service.WriteJSON(path, profiles); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, "  \"") && !strings.Contains(out, "  {") {
		t.Errorf("output not indented:\n%s", out)
	}
	if strings.Contains(out, `\u0026`) {
		t.Error("HTML escaping should be disabled")
	}
}
