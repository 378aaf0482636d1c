package prompt

// Template kinds the engine resolves. Each kind has a built-in fallback that
// is compiled into the binary, so resolution can never come up empty.
const (
	KindQuestionGeneration   = "question-generation"
	KindQuestionGenerationMC = "question-generation-multiple-choice"
	KindAnswerMarking        = "answer-marking"
	KindMarkingMaterial      = "marking-material-context"
)

// requiredVars lists the variables a template of each kind declares as
// required. Externally stored templates of a kind share the declaration.
var requiredVars = map[string][]string{
	KindQuestionGeneration:   {"material", "desired_count"},
	KindQuestionGenerationMC: {"material", "desired_count"},
	KindAnswerMarking:        nil,
	KindMarkingMaterial:      {"material"},
}

// fallbackTemplates are the guaranteed-present built-ins, one per kind.
var fallbackTemplates = map[string]string{
	KindQuestionGeneration: `You are a helpful and encouraging tutor. Questions should be appropriate for students and test understanding of key concepts.

Generate concise practice questions for a student based on the following revision material. Return each question on its own line, with no numbering or extra text.

Revision material:
{material}

Number of questions: {desired_count}`,

	KindQuestionGenerationMC: `You are a helpful and encouraging tutor. Questions should be appropriate for students and test understanding of key concepts.

Generate multiple choice practice questions for a student based on the following revision material. Format every question exactly as:

QUESTION: <question text>
A) <option>
B) <option>
C) <option>
D) <option>
CORRECT: <letter A-D>
RATIONALE: <why the correct answer is correct>

Separate questions with a blank line. Output nothing besides the question blocks.

Revision material:
{material}

Number of questions: {desired_count}`,

	KindAnswerMarking: `You are a fair and thorough tutor grading a student's answer. Evaluate the answer based solely on the question asked. Award "Full Marks" for a correct answer, "Partial Marks" when the answer shows genuine understanding but is incomplete or imprecise, and "Incorrect" otherwise. Never penalize a correct answer because it draws on accurate knowledge beyond the supplied material. When the supplied material is sparse, lean toward "Partial Marks" or "Full Marks" whenever understanding is demonstrated. Always justify the grade you give.`,

	KindMarkingMaterial: `The question was generated from the following study material. Use it as context when judging relevance, but do not treat it as the only admissible source of correct information.

Study material:
{material}`,
}

// markingPromptSkeleton assembles the final marking prompt from the resolved
// rubric and the answer under review. The provider must reply with strict
// JSON so the grader can parse a single structured result.
const markingPromptSkeleton = `{rubric}

Question: {question}
Student answer: {student_answer}

Respond in strict JSON with keys: score (one of "Full Marks", "Partial Marks", "Incorrect"), is_correct (true/false), correct_answer (string), explanation (string). The explanation must never be empty. No extra text.`
