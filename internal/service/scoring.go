package service

import (
	"math"

	"github.com/revisehub/revisehub/internal/model"
)

type ScoringService interface {
	// Accuracy aggregates marked answers into a 0-100 percentage.
	Accuracy(answers []model.Answer) float64
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

func (s *scoringService) Accuracy(answers []model.Answer) float64 {
	if len(answers) == 0 {
		return 0
	}
	var sum float64
	for _, a := range answers {
		sum += a.Tier.Weight()
	}
	pct := sum / float64(len(answers)) * 100.0
	return math.Round(pct*100) / 100
}
