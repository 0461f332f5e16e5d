// Package metrics computes dashboard figures from stored analyses.
package metrics

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
	"github.com/codelie14/zillasec/internal/services/extraction"
)

// Service aggregates analysis and identity counts
type Service struct {
	analyses   interfaces.AnalysisStorage
	identities interfaces.IdentityStorage
	logger     arbor.ILogger
}

// NewService creates a new metrics service
func NewService(analyses interfaces.AnalysisStorage, identities interfaces.IdentityStorage, logger arbor.ILogger) *Service {
	return &Service{
		analyses:   analyses,
		identities: identities,
		logger:     logger,
	}
}

// Dashboard counts every analysis; risk figures come from risk_summary documents only
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardMetrics, error) {
	records, err := s.analyses.ListAnalyses(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	identities, err := s.identities.CountIdentities(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &models.DashboardMetrics{
		TotalAnalyses: len(records),
		IdentityCount: identities,
	}

	var scoreSum float64
	var scored int
	for _, r := range records {
		if r.Result.Variant != models.SchemaRiskSummary {
			continue
		}
		var doc extraction.RiskSummary
		if err := r.Result.Decode(&doc); err != nil {
			s.logger.Warn().Err(err).Str("analysis_id", r.ID).Msg("Skipping undecodable analysis")
			continue
		}
		metrics.TotalAnomalies += len(doc.Anomalies)
		metrics.TotalRisks += len(doc.Risques)
		if doc.Metriques != nil && doc.Metriques.ScoreRisque != nil {
			scoreSum += *doc.Metriques.ScoreRisque
			scored++
		}
	}
	if scored > 0 {
		metrics.AvgRiskScore = scoreSum / float64(scored)
	}

	s.logger.Debug().
		Int("analyses", metrics.TotalAnalyses).
		Int("scored", scored).
		Msg("Dashboard metrics computed")
	return metrics, nil
}
