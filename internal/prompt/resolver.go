package prompt

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/rs/zerolog/log"
)

// Source tags where a resolved template came from, for observability.
type Source string

const (
	SourceSubjectSpecific Source = "subject-specific"
	SourceGeneric         Source = "generic"
	SourceFallback        Source = "fallback"
)

// Resolved is one template picked by the fallback chain.
type Resolved struct {
	Name         string
	Text         string
	RequiredVars []string
	Source       Source
}

// Resolver looks templates up through the subject-specific → generic →
// built-in chain. Resolution never fails: the built-in tier is always there.
type Resolver struct {
	store       Store
	environment string
}

func NewResolver(store Store, environment string) *Resolver {
	return &Resolver{store: store, environment: environment}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize turns a subject like "Organic Chemistry II" into the name
// fragment "organic-chemistry-ii".
func Normalize(subject string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(subject), "-")
	return strings.Trim(s, "-")
}

// candidate is one tier of the resolution chain.
type candidate struct {
	name   string
	source Source
}

func (r *Resolver) chain(kind, subject string) []candidate {
	var cands []candidate
	if norm := Normalize(subject); norm != "" {
		cands = append(cands, candidate{name: kind + "-" + norm, source: SourceSubjectSpecific})
	}
	cands = append(cands, candidate{name: kind, source: SourceGeneric})
	return cands
}

// Resolve walks the chain and returns the first template that exists. It
// never fails; at worst the built-in fallback for the kind is returned.
func (r *Resolver) Resolve(ctx context.Context, kind, subject string) Resolved {
	for _, c := range r.chain(kind, subject) {
		text, ok, err := r.store.Lookup(ctx, c.name, r.environment)
		if err != nil {
			log.Warn().Err(err).Str("name", c.name).Msg("Prompt store lookup failed, trying next tier")
			continue
		}
		if !ok {
			continue
		}
		return Resolved{Name: c.name, Text: text, RequiredVars: requiredVars[kind], Source: c.source}
	}
	return Resolved{Name: kind, Text: fallbackTemplates[kind], RequiredVars: requiredVars[kind], Source: SourceFallback}
}

var placeholder = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Render substitutes {name} placeholders. Every declared required variable
// must be supplied, and the template text must actually reference it, or
// rendering fails; a stored template that lost a required placeholder is
// broken, not silently degraded. A non-required placeholder with no value
// renders as the empty string.
func Render(t Resolved, vars map[string]string) (string, error) {
	for _, name := range t.RequiredVars {
		if _, ok := vars[name]; !ok {
			return "", fmt.Errorf("%w: template %q requires variable %q", apperr.ErrTemplate, t.Name, name)
		}
		if !strings.Contains(t.Text, "{"+name+"}") {
			return "", fmt.Errorf("%w: template %q does not reference required variable %q", apperr.ErrTemplate, t.Name, name)
		}
	}
	out := placeholder.ReplaceAllStringFunc(t.Text, func(m string) string {
		name := m[1 : len(m)-1]
		return vars[name]
	})
	return out, nil
}

// ResolveRendered walks the chain rendering as it goes: a tier whose template
// cannot be rendered is treated as absent and the next tier is tried, so a
// broken subject-specific template degrades to generic and then to the
// built-in. The returned error is only possible when the built-in fallback
// itself cannot be rendered, which is a programming error, not runtime input.
func (r *Resolver) ResolveRendered(ctx context.Context, kind, subject string, vars map[string]string) (string, Source, error) {
	for _, c := range r.chain(kind, subject) {
		text, ok, err := r.store.Lookup(ctx, c.name, r.environment)
		if err != nil || !ok {
			if err != nil {
				log.Warn().Err(err).Str("name", c.name).Msg("Prompt store lookup failed, trying next tier")
			}
			continue
		}
		rendered, rerr := Render(Resolved{Name: c.name, Text: text, RequiredVars: requiredVars[kind]}, vars)
		if rerr != nil {
			log.Warn().Err(rerr).Str("name", c.name).Msg("Template failed to render, trying next tier")
			continue
		}
		return rendered, c.source, nil
	}

	fb := Resolved{Name: kind, Text: fallbackTemplates[kind], RequiredVars: requiredVars[kind]}
	rendered, err := Render(fb, vars)
	if err != nil {
		return "", SourceFallback, fmt.Errorf("built-in template for kind %q is unusable: %w", kind, err)
	}
	return rendered, SourceFallback, nil
}

// MarkingPrompt renders the final marking prompt from an already-assembled
// rubric and the answer under review.
func MarkingPrompt(rubric, question, studentAnswer string) string {
	out, _ := Render(Resolved{
		Name:         "marking-prompt",
		Text:         markingPromptSkeleton,
		RequiredVars: []string{"rubric", "question", "student_answer"},
	}, map[string]string{
		"rubric":         rubric,
		"question":       question,
		"student_answer": studentAnswer,
	})
	return out
}
