package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkarvon/fitplan/internal/engine"
	"github.com/mkarvon/fitplan/internal/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// describer produces a markdown description for a workout template.
type describer interface {
	Describe(ctx context.Context, tmpl engine.Template) (string, error)
}

const describeSystemPrompt = `You are a fitness coach writing short workout descriptions.
Given a workout template, write 2-3 sentences of markdown describing what the
workout trains and who it suits. Do not repeat the exercise list verbatim.`

// llmDescriber generates template descriptions with an OpenAI model.
type llmDescriber struct {
	client openai.Client
	logger *slog.Logger
}

func newLLMDescriber(apiKey string, logger *slog.Logger) *llmDescriber {
	return &llmDescriber{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}
}

func (d *llmDescriber) Describe(ctx context.Context, tmpl engine.Template) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Workout: %s (about %d minutes)\n", tmpl.Name, tmpl.EstimatedDurationMinutes)
	for _, ex := range tmpl.Exercises {
		if ex.Type.IsCardio() {
			fmt.Fprintf(&sb, "- %s: %d min cardio\n", ex.Name, ex.DurationMinutes)
			continue
		}
		fmt.Fprintf(&sb, "- %s: %d sets of %d reps\n", ex.Name, ex.Sets, ex.Reps)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(describeSystemPrompt),
			openai.UserMessage(sb.String()),
		},
	}

	d.logger.DebugContext(ctx, "requesting template description",
		slog.String("template_id", tmpl.ID),
		slog.Int("exercise_count", len(tmpl.Exercises)))

	completion, err := d.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "chat completion", slog.String("template_id", tmpl.ID))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return content, nil
}

// fallbackDescriber builds a minimal markdown description without any
// external service.
type fallbackDescriber struct{}

func (f fallbackDescriber) Describe(_ context.Context, tmpl engine.Template) (string, error) {
	return f.describe(tmpl), nil
}

func (f fallbackDescriber) describe(tmpl engine.Template) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", tmpl.Name)
	fmt.Fprintf(&sb, "A %d-minute", tmpl.EstimatedDurationMinutes)
	if tmpl.DominantType().IsCardio() {
		sb.WriteString(" cardio-focused workout")
	} else {
		sb.WriteString(" strength-focused workout")
	}
	fmt.Fprintf(&sb, " with %d exercises:\n\n", len(tmpl.Exercises))
	for _, ex := range tmpl.Exercises {
		if ex.Type.IsCardio() {
			fmt.Fprintf(&sb, "- %s, %d min\n", ex.Name, ex.DurationMinutes)
			continue
		}
		fmt.Fprintf(&sb, "- %s, %d×%d\n", ex.Name, ex.Sets, ex.Reps)
	}
	return sb.String()
}
