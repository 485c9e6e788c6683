package questions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/boam79/ai-interview/internal/llm"
	"github.com/boam79/ai-interview/internal/prompts"
	"github.com/boam79/ai-interview/internal/session"
)

// canonical greeting used when the very first generation call fails
const firstQuestionFallback = "안녕하세요! 면접에 참여해주셔서 감사합니다. 먼저 간단히 자기소개를 해주시겠어요?"

// deterministic fallbacks for turns 2..N, indexed by turn number so
// behavior is reproducible under provider outage
var fallbackQuestions = []string{
	"이전 경험에서 가장 도전적이었던 프로젝트는 무엇이었나요?",
	"팀워크가 중요하다고 생각하시나요? 관련 경험을 말씀해주세요.",
	"향후 5년 후 어떤 모습이 되고 싶으신가요?",
	"마지막으로 우리 회사에 대해 궁금한 점이 있으신가요?",
}

// category rotation over the interview; turn 1 is always the opening
var turnVariants = map[int]string{
	2: "experience",
	3: "problem_solving",
	4: "teamwork",
	5: "motivation",
}

// Generator produces the next interview question from the turn history.
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

// NextQuestion returns a non-empty question for the given turn. Provider
// failures are absorbed with a deterministic fallback; the returned error
// is reserved for invalid input.
func (g *Generator) NextQuestion(ctx context.Context, history []session.Turn, turnNumber int) (string, error) {
	if turnNumber < 1 {
		return "", fmt.Errorf("invalid turn number: %d", turnNumber)
	}

	prompt, err := g.buildPrompt(history, turnNumber)
	if err != nil {
		g.logger.Warn("Failed to build question prompt, using fallback",
			zap.Int("turn", turnNumber),
			zap.Error(err))
		return Fallback(turnNumber), nil
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
	if err != nil || generated == "" {
		g.logger.Warn("Question generation failed, using fallback",
			zap.Int("turn", turnNumber),
			zap.String("provider", g.provider.GetProviderName()),
			zap.Error(err))
		return Fallback(turnNumber), nil
	}

	return generated, nil
}

func (g *Generator) buildPrompt(history []session.Turn, turnNumber int) (string, error) {
	if turnNumber == 1 {
		return g.prompts.BuildPrompt("first_question", "default", nil)
	}

	previousAnswer := ""
	if len(history) > 0 {
		previousAnswer = history[len(history)-1].Answer
	}

	variant, exists := turnVariants[turnNumber]
	if !exists {
		variant = "background"
	}

	return g.prompts.BuildPrompt("next_question", variant, map[string]string{
		"PreviousAnswer": previousAnswer,
		"TurnNumber":     strconv.Itoa(turnNumber),
		"TotalQuestions": strconv.Itoa(len(turnVariants) + 1),
	})
}

// Fallback returns the fixed question for a turn when generation is
// unavailable.
func Fallback(turnNumber int) string {
	if turnNumber <= 1 {
		return firstQuestionFallback
	}
	idx := turnNumber - 2
	if idx >= len(fallbackQuestions) {
		idx = len(fallbackQuestions) - 1
	}
	return fallbackQuestions[idx]
}
