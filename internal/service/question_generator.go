package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/revisehub/revisehub/internal/model"
	"github.com/revisehub/revisehub/internal/prompt"
	"github.com/revisehub/revisehub/internal/provider"
	"github.com/rs/zerolog/log"
)

const generationSystemMessage = "You are a helpful tutor generating practice questions for a student."

// GenerateRequest describes one batch of questions to produce for a run.
type GenerateRequest struct {
	Material string
	Count    int
	Subject  string
	Style    string
}

// GenerateResult carries the questions plus whether they are synthetic
// stand-ins produced because the provider could not deliver usable output.
type GenerateResult struct {
	Questions []model.Question
	Synthetic bool
}

// QuestionGenerator turns revision material into a batch of questions. It
// never fails: when the provider errors out or returns nothing parseable the
// batch degrades to deterministic synthetic questions.
type QuestionGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) GenerateResult
}

type questionGenerator struct {
	resolver *prompt.Resolver
	llm      provider.Provider
}

func NewQuestionGenerator(resolver *prompt.Resolver, llm provider.Provider) QuestionGenerator {
	return &questionGenerator{resolver: resolver, llm: llm}
}

func (g *questionGenerator) Generate(ctx context.Context, req GenerateRequest) GenerateResult {
	kind := prompt.KindQuestionGeneration
	if req.Style == model.StyleMultipleChoice {
		kind = prompt.KindQuestionGenerationMC
	}

	rendered, source, err := g.resolver.ResolveRendered(ctx, kind, req.Subject, map[string]string{
		"material":      req.Material,
		"desired_count": strconv.Itoa(req.Count),
	})
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("Question generation prompt unusable, producing synthetic questions")
		return GenerateResult{Questions: syntheticQuestions(req.Count, req.Style), Synthetic: true}
	}

	raw, err := provider.CompleteWithRetry(ctx, g.llm, rendered, generationSystemMessage)
	if err != nil {
		log.Warn().Err(err).Str("subject", req.Subject).Msg("Provider failed during question generation, producing synthetic questions")
		return GenerateResult{Questions: syntheticQuestions(req.Count, req.Style), Synthetic: true}
	}

	var questions []model.Question
	if req.Style == model.StyleMultipleChoice {
		questions = parseMultipleChoice(raw)
	} else {
		questions = parseFreeText(raw)
	}
	if len(questions) == 0 {
		log.Warn().Str("subject", req.Subject).Msg("Provider returned no parseable questions, producing synthetic questions")
		return GenerateResult{Questions: syntheticQuestions(req.Count, req.Style), Synthetic: true}
	}
	if len(questions) > req.Count {
		questions = questions[:req.Count]
	}

	log.Info().Int("count", len(questions)).Str("promptSource", string(source)).Msg("Generated questions")
	return GenerateResult{Questions: questions}
}

// leadingMarker matches list decorations the model tends to add despite
// instructions: "1.", "12)", "-", "*", "•".
var leadingMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

func parseFreeText(raw string) []model.Question {
	var questions []model.Question
	for _, line := range strings.Split(raw, "\n") {
		text := strings.TrimSpace(leadingMarker.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}
		idx := len(questions)
		questions = append(questions, model.Question{
			ID:    fmt.Sprintf("q%d", idx+1),
			Index: idx,
			Text:  text,
			Style: model.StyleFreeText,
		})
	}
	return questions
}

// mcBlock accumulates one multiple-choice block as its lines stream past.
type mcBlock struct {
	text          string
	choices       []string
	correctLetter string
	rationale     []string
	inRationale   bool
}

func (b *mcBlock) empty() bool {
	return b.text == "" && len(b.choices) == 0 && b.correctLetter == "" && len(b.rationale) == 0
}

// finish validates the block and converts it to a question, or returns false
// when any required piece is missing or malformed. Index and ID are assigned
// by the caller.
func (b *mcBlock) finish() (model.Question, bool) {
	if b.text == "" || len(b.choices) != 4 || b.correctLetter == "" || len(b.rationale) == 0 {
		return model.Question{}, false
	}
	correct := int(b.correctLetter[0] - 'A')
	if correct < 0 || correct >= len(b.choices) {
		return model.Question{}, false
	}
	rationale := strings.TrimSpace(strings.Join(b.rationale, "\n"))
	if rationale == "" {
		return model.Question{}, false
	}
	return model.Question{
		Text:               b.text,
		Style:              model.StyleMultipleChoice,
		Choices:            b.choices,
		CorrectChoiceIndex: &correct,
		Rationale:          rationale,
	}, true
}

var choiceLine = regexp.MustCompile(`^([A-D])\)\s*(.*)$`)

func parseMultipleChoice(raw string) []model.Question {
	var questions []model.Question
	block := &mcBlock{}

	flush := func() {
		if block.empty() {
			return
		}
		if q, ok := block.finish(); ok {
			q.Index = len(questions)
			q.ID = fmt.Sprintf("q%d", len(questions)+1)
			questions = append(questions, q)
		} else {
			log.Warn().Str("question", block.text).Msg("Dropping malformed multiple-choice block")
		}
		block = &mcBlock{}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(leadingMarker.ReplaceAllString(line, ""))
		switch {
		case strings.HasPrefix(line, "QUESTION:"):
			flush()
			block.text = strings.TrimSpace(strings.TrimPrefix(line, "QUESTION:"))
		case choiceLine.MatchString(line):
			m := choiceLine.FindStringSubmatch(line)
			// Choices must arrive in A-D order; anything else malforms the block.
			if int(m[1][0]-'A') == len(block.choices) {
				block.choices = append(block.choices, strings.TrimSpace(m[2]))
			} else {
				block.choices = append(block.choices, "", "", "", "", "")
			}
			block.inRationale = false
		case strings.HasPrefix(line, "CORRECT:"):
			block.correctLetter = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "CORRECT:")))
			block.inRationale = false
		case strings.HasPrefix(line, "RATIONALE:") || strings.HasPrefix(line, "EXPLANATION:"):
			rest := strings.TrimSpace(line[strings.Index(line, ":")+1:])
			block.rationale = append(block.rationale, rest)
			block.inRationale = true
		case line == "":
			block.inRationale = false
		case block.inRationale:
			block.rationale = append(block.rationale, line)
		}
	}
	flush()
	return questions
}

// syntheticQuestions is the last-resort batch when generation fails outright.
// Deterministic so a degraded run is still fully playable.
func syntheticQuestions(count int, style string) []model.Question {
	questions := make([]model.Question, 0, count)
	for i := 0; i < count; i++ {
		q := model.Question{
			ID:    fmt.Sprintf("q%d", i+1),
			Index: i,
			Text:  fmt.Sprintf("Placeholder question %d: summarize one key idea from your revision material.", i+1),
			Style: model.StyleFreeText,
		}
		if style == model.StyleMultipleChoice {
			correct := 0
			q.Style = model.StyleMultipleChoice
			q.Text = fmt.Sprintf("Placeholder question %d: which option restates a key idea from your revision material?", i+1)
			q.Choices = []string{
				"The main idea you highlighted while revising",
				"An unrelated statement",
				"A reversed version of the idea",
				"None of the above",
			}
			q.CorrectChoiceIndex = &correct
			q.Rationale = "Placeholder question generated because no real questions were available."
		}
		questions = append(questions, q)
	}
	return questions
}
