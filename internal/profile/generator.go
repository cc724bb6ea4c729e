package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// Generator turns user history records into structured profiles by
// calling an OpenAI-compatible chat-completion endpoint.
//
// Generation never fails the batch: transport errors, empty responses
// and unparsable model output all come back as a Profile carrying the
// uid and an error message.
type Generator struct {
	client openai.Client
	cfg    config.LLMConfig
	log    zerolog.Logger
}

// NewGenerator creates a Generator for the configured endpoint
func NewGenerator(cfg config.LLMConfig, log zerolog.Logger) *Generator {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Generator{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		log:    log.With().Str("component", "profile").Logger(),
	}
}

// Generate produces the profile for one user history. When multimodal is
// set the vision model is used and up to three shared images are attached
// inline; otherwise the text model analyzes content with media counts
// only. The model auto-switches when the configured one does not match
// the requested mode.
func (g *Generator) Generate(ctx context.Context, history *models.UserHistory, multimodal bool) *models.Profile {
	uid := history.UID
	if len(history.Articles) == 0 {
		return &models.Profile{UID: uid, Error: "not enough history data"}
	}

	model := g.cfg.Model
	if multimodal {
		model = g.cfg.VLModel
	}

	summary := BuildContentSummary(history.Articles)
	images := CollectImageURLs(history.Articles)
	videos := CollectVideoURLs(history.Articles)

	var message openai.ChatCompletionMessageParamUnion
	if multimodal {
		if len(videos) > maxPromptVideos {
			videos = videos[:maxPromptVideos]
		}
		prompt := multimodalPrompt(uid, summary, videos)

		parts := []openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
		}
		attached := 0
		for _, u := range images {
			if attached >= maxPromptImages {
				break
			}
			parts = append(parts, openai.ImageContentPart(
				openai.ChatCompletionContentPartImageImageURLParam{URL: u}))
			attached++
		}
		message = openai.UserMessage(parts)
	} else {
		message = openai.UserMessage(textPrompt(uid, summary, len(images), len(videos)))
	}

	g.log.Debug().Str("uid", uid).Str("model", model).Bool("multimodal", multimodal).
		Int("images", len(images)).Int("videos", len(videos)).Msg("Requesting profile")

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    []openai.ChatCompletionMessageParamUnion{message},
		Temperature: openai.Float(g.cfg.Temperature),
	})
	if err != nil {
		g.log.Error().Err(err).Str("uid", uid).Msg("Chat completion failed")
		return &models.Profile{UID: uid, Error: fmt.Sprintf("chat completion failed: %v", err)}
	}
	if len(completion.Choices) == 0 {
		return &models.Profile{UID: uid, Error: "empty completion response"}
	}

	raw := completion.Choices[0].Message.Content

	var profile models.Profile
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &profile); err != nil {
		g.log.Warn().Err(err).Str("uid", uid).Msg("Model response is not valid profile JSON")
		return &models.Profile{UID: uid, Error: fmt.Sprintf("parsing profile JSON: %v", err), RawResponse: raw}
	}
	if profile.UID == "" {
		profile.UID = uid
	}
	return &profile
}
