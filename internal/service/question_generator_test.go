package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/revisehub/revisehub/internal/model"
	"github.com/revisehub/revisehub/internal/prompt"
)

// fakeProvider scripts the LLM reply for a test.
type fakeProvider struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
	lastSystem string
}

func (f *fakeProvider) Complete(_ context.Context, prompt, systemMessage string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastSystem = systemMessage
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testResolver() *prompt.Resolver {
	return prompt.NewResolver(&prompt.StaticStore{}, "test")
}

func TestGenerateFreeText(t *testing.T) {
	llm := &fakeProvider{reply: "2+2=?\n\n3+3=?"}
	g := NewQuestionGenerator(testResolver(), llm)

	res := g.Generate(context.Background(), GenerateRequest{
		Material: "arithmetic notes", Count: 5, Subject: "Mathematics", Style: model.StyleFreeText,
	})
	if res.Synthetic {
		t.Fatal("questions marked synthetic")
	}
	if len(res.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(res.Questions))
	}
	if res.Questions[0].ID != "q1" || res.Questions[0].Text != "2+2=?" {
		t.Errorf("q1 = %+v", res.Questions[0])
	}
	if res.Questions[1].ID != "q2" || res.Questions[1].Text != "3+3=?" {
		t.Errorf("q2 = %+v", res.Questions[1])
	}
	if !strings.Contains(llm.lastPrompt, "arithmetic notes") {
		t.Errorf("material missing from prompt: %q", llm.lastPrompt)
	}
}

func TestGenerateStripsNumberingAndBullets(t *testing.T) {
	llm := &fakeProvider{reply: "1. First question?\n2) Second question?\n- Third question?\n* Fourth question?\n• Fifth question?"}
	g := NewQuestionGenerator(testResolver(), llm)

	res := g.Generate(context.Background(), GenerateRequest{Material: "m", Count: 10, Subject: "s", Style: model.StyleFreeText})
	want := []string{"First question?", "Second question?", "Third question?", "Fourth question?", "Fifth question?"}
	if len(res.Questions) != len(want) {
		t.Fatalf("got %d questions, want %d", len(res.Questions), len(want))
	}
	for i, w := range want {
		if res.Questions[i].Text != w {
			t.Errorf("question %d = %q, want %q", i, res.Questions[i].Text, w)
		}
	}
}

func TestGenerateTruncatesOverProduction(t *testing.T) {
	llm := &fakeProvider{reply: "a?\nb?\nc?\nd?"}
	g := NewQuestionGenerator(testResolver(), llm)

	res := g.Generate(context.Background(), GenerateRequest{Material: "m", Count: 2, Subject: "s", Style: model.StyleFreeText})
	if len(res.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(res.Questions))
	}
}

func TestGenerateSyntheticOnProviderFailure(t *testing.T) {
	llm := &fakeProvider{err: errors.New("boom")}
	g := NewQuestionGenerator(testResolver(), llm)

	res := g.Generate(context.Background(), GenerateRequest{Material: "m", Count: 3, Subject: "s", Style: model.StyleFreeText})
	if !res.Synthetic {
		t.Fatal("expected synthetic questions")
	}
	if len(res.Questions) != 3 {
		t.Fatalf("got %d synthetic questions, want 3", len(res.Questions))
	}
	for i, q := range res.Questions {
		if q.Text == "" || q.ID == "" {
			t.Errorf("synthetic question %d is incomplete: %+v", i, q)
		}
	}
}

func TestGenerateSyntheticOnEmptyReply(t *testing.T) {
	llm := &fakeProvider{reply: "\n\n  \n"}
	g := NewQuestionGenerator(testResolver(), llm)

	res := g.Generate(context.Background(), GenerateRequest{Material: "m", Count: 2, Subject: "s", Style: model.StyleFreeText})
	if !res.Synthetic || len(res.Questions) != 2 {
		t.Fatalf("synthetic=%v count=%d", res.Synthetic, len(res.Questions))
	}
}

const mcReply = `QUESTION: What is the capital of France?
A) London
B) Paris
C) Berlin
D) Madrid
CORRECT: B
RATIONALE: Paris has been the capital of France
since the 10th century.

QUESTION: Missing rationale here?
A) one
B) two
C) three
D) four
CORRECT: A

QUESTION: Bad correct letter?
A) one
B) two
C) three
D) four
CORRECT: E
RATIONALE: irrelevant

QUESTION: What is 2+2?
A) 3
B) 5
C) 4
D) 22
CORRECT: C
EXPLANATION: Basic addition.`

func TestGenerateMultipleChoice(t *testing.T) {
	llm := &fakeProvider{reply: mcReply}
	g := NewQuestionGenerator(testResolver(), llm)

	res := g.Generate(context.Background(), GenerateRequest{Material: "m", Count: 10, Subject: "s", Style: model.StyleMultipleChoice})
	if res.Synthetic {
		t.Fatal("marked synthetic")
	}
	if len(res.Questions) != 2 {
		t.Fatalf("got %d questions, want 2 (malformed blocks dropped)", len(res.Questions))
	}

	q1 := res.Questions[0]
	if q1.Text != "What is the capital of France?" {
		t.Errorf("q1 text = %q", q1.Text)
	}
	if q1.CorrectChoiceIndex == nil || *q1.CorrectChoiceIndex != 1 {
		t.Errorf("q1 correct index = %v", q1.CorrectChoiceIndex)
	}
	if !strings.Contains(q1.Rationale, "10th century") {
		t.Errorf("multi-line rationale lost: %q", q1.Rationale)
	}
	if q1.ReferenceAnswer() != "Paris" {
		t.Errorf("reference answer = %q", q1.ReferenceAnswer())
	}

	q2 := res.Questions[1]
	if q2.ID != "q2" || q2.Rationale != "Basic addition." {
		t.Errorf("q2 = %+v", q2)
	}
}
