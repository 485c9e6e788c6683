package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/llm"
	"github.com/boam79/ai-interview/internal/prompts"
	"github.com/boam79/ai-interview/internal/session"
)

// Fallback is stored when feedback generation fails so the interview
// still closes with a message for the candidate.
const Fallback = `면접에 참여해주셔서 감사합니다.

지원자님의 답변을 통해 기본적인 소통 능력과 의지를 확인할 수 있었습니다.

앞으로 더 구체적인 경험과 예시를 포함하여 답변하시면 더욱 인상적인 면접이 될 것입니다.

지원자님의 성공을 응원합니다!`

// Generator produces the final narrative feedback from the transcript.
type Generator struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	policy   llm.RetryPolicy
	logger   *zap.Logger
}

func NewGenerator(provider llm.Provider, promptProvider prompts.PromptProvider, policy llm.RetryPolicy, logger *zap.Logger) *Generator {
	return &Generator{
		provider: provider,
		prompts:  promptProvider,
		policy:   policy,
		logger:   logger,
	}
}

// Generate builds feedback covering every turn in order. The caller
// substitutes Fallback on error.
func (g *Generator) Generate(ctx context.Context, turns []session.Turn) (string, error) {
	if len(turns) == 0 {
		return "", errors.New("no turns to summarize")
	}

	prompt, err := g.prompts.BuildPrompt("summary", "default", map[string]string{
		"Transcript": Transcript(turns),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build summary prompt: %w", err)
	}

	var generated string
	err = g.policy.Do(ctx, func(ctx context.Context) error {
		result, err := g.provider.GenerateText(ctx, prompt, "")
		if err != nil {
			return err
		}
		generated = strings.TrimSpace(result.Text)
		return nil
	})
	if err != nil {
		return "", err
	}
	if generated == "" {
		return "", errors.New("empty summary generated")
	}

	g.logger.Info("Interview summary generated",
		zap.Int("turns", len(turns)),
		zap.String("provider", g.provider.GetProviderName()))

	return generated, nil
}

// Transcript renders the Q&A pairs as numbered lines, preserving order.
func Transcript(turns []session.Turn) string {
	var b strings.Builder
	for i, turn := range turns {
		answer := turn.Answer
		if answer == "" {
			answer = "답변 없음"
		}
		b.WriteString(fmt.Sprintf("Q%d: %s\nA%d: %s", i+1, turn.Question, i+1, answer))
		if i < len(turns)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
