package service

import (
	"testing"

	"github.com/revisehub/revisehub/internal/model"
)

func answersWithTiers(tiers ...model.Tier) []model.Answer {
	out := make([]model.Answer, len(tiers))
	for i, tier := range tiers {
		out[i] = model.Answer{QuestionID: "q", Tier: tier}
	}
	return out
}

func TestAccuracy(t *testing.T) {
	s := NewScoringService()

	cases := []struct {
		name  string
		tiers []model.Tier
		want  float64
	}{
		{"empty", nil, 0},
		{"all full", []model.Tier{model.TierFullMarks, model.TierFullMarks}, 100},
		{"all incorrect", []model.Tier{model.TierIncorrect, model.TierIncorrect}, 0},
		{"half credit", []model.Tier{model.TierPartialMarks, model.TierPartialMarks}, 50},
		{"mixed", []model.Tier{model.TierFullMarks, model.TierPartialMarks, model.TierIncorrect}, 50},
		{"thirds round", []model.Tier{model.TierFullMarks, model.TierIncorrect, model.TierIncorrect}, 33.33},
	}
	for _, tc := range cases {
		if got := s.Accuracy(answersWithTiers(tc.tiers...)); got != tc.want {
			t.Errorf("%s: accuracy = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAccuracyMonotonicInUpgrades(t *testing.T) {
	s := NewScoringService()
	base := s.Accuracy(answersWithTiers(model.TierIncorrect, model.TierIncorrect, model.TierIncorrect))
	partial := s.Accuracy(answersWithTiers(model.TierPartialMarks, model.TierIncorrect, model.TierIncorrect))
	full := s.Accuracy(answersWithTiers(model.TierFullMarks, model.TierIncorrect, model.TierIncorrect))
	if !(base < partial && partial < full) {
		t.Fatalf("upgrading one answer must raise accuracy: %v, %v, %v", base, partial, full)
	}
}
