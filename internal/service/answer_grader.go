package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/model"
	"github.com/revisehub/revisehub/internal/prompt"
	"github.com/revisehub/revisehub/internal/provider"
	"github.com/rs/zerolog/log"
)

const markingSystemMessage = "You are a fair tutor marking a student's answer. Reply with strict JSON only."

const fallbackExplanation = "Automated comparison against the reference answer; the grader service was unavailable."

// GradeRequest is one answer to mark against its question.
type GradeRequest struct {
	Question      *model.Question
	StudentAnswer string
	Material      string
	Subject       string
}

// Grading is the structured marking outcome.
type Grading struct {
	Tier          model.Tier
	CorrectAnswer string
	Explanation   string
}

// AnswerGrader marks a student answer. Grading prefers the provider; when the
// provider cannot deliver a usable verdict the grader falls back to exact
// comparison against the question's reference answer, and when no reference
// answer exists either, grading fails with a distinct error rather than
// recording a grade the student did not earn.
type AnswerGrader interface {
	Grade(ctx context.Context, req GradeRequest) (Grading, error)
}

type answerGrader struct {
	resolver *prompt.Resolver
	llm      provider.Provider
}

func NewAnswerGrader(resolver *prompt.Resolver, llm provider.Provider) AnswerGrader {
	return &answerGrader{resolver: resolver, llm: llm}
}

// markingResponse is the strict JSON shape the marking prompt demands.
type markingResponse struct {
	Score         string `json:"score"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

func (g *answerGrader) Grade(ctx context.Context, req GradeRequest) (Grading, error) {
	rubric, _, err := g.resolver.ResolveRendered(ctx, prompt.KindAnswerMarking, req.Subject, nil)
	if err != nil {
		return g.fallback(req, err)
	}
	if material := strings.TrimSpace(req.Material); material != "" {
		fragment, _, ferr := g.resolver.ResolveRendered(ctx, prompt.KindMarkingMaterial, req.Subject, map[string]string{
			"material": material,
		})
		if ferr == nil {
			rubric = rubric + "\n\n" + fragment
		}
	}

	full := prompt.MarkingPrompt(rubric, req.Question.Text, req.StudentAnswer)
	raw, err := provider.CompleteWithRetry(ctx, g.llm, full, markingSystemMessage)
	if err != nil {
		return g.fallback(req, err)
	}

	grading, err := parseMarkingResponse(raw)
	if err != nil {
		log.Warn().Err(err).Str("questionID", req.Question.ID).Msg("Unparseable marking response, falling back")
		return g.fallback(req, err)
	}
	return grading, nil
}

// parseMarkingResponse decodes the provider's JSON verdict. Markdown code
// fences around the JSON are tolerated; anything else is a parse failure.
func parseMarkingResponse(raw string) (Grading, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var resp markingResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return Grading{}, fmt.Errorf("decode marking response: %w", err)
	}

	tier := model.Tier(resp.Score)
	if !tier.Valid() {
		return Grading{}, fmt.Errorf("marking response has unknown score %q", resp.Score)
	}
	if strings.TrimSpace(resp.Explanation) == "" {
		return Grading{}, fmt.Errorf("marking response has empty explanation")
	}
	return Grading{
		Tier:          tier,
		CorrectAnswer: resp.CorrectAnswer,
		Explanation:   resp.Explanation,
	}, nil
}

// fallback compares the student answer to the question's reference answer.
// Only Full Marks or Incorrect are possible here; partial credit needs a
// judgement call the comparison cannot make.
func (g *answerGrader) fallback(req GradeRequest, cause error) (Grading, error) {
	reference := req.Question.ReferenceAnswer()
	if reference == "" {
		return Grading{}, fmt.Errorf("%w: %v", apperr.ErrGradingFailure, cause)
	}

	tier := model.TierIncorrect
	if strings.EqualFold(strings.TrimSpace(req.StudentAnswer), strings.TrimSpace(reference)) {
		tier = model.TierFullMarks
	}
	log.Info().Str("questionID", req.Question.ID).Str("tier", string(tier)).Msg("Graded answer via reference comparison fallback")
	return Grading{
		Tier:          tier,
		CorrectAnswer: reference,
		Explanation:   fallbackExplanation,
	}, nil
}
