package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/metrics"
)

type DepthResearcher interface {
	Run(ctx context.Context, topic string) (*domain.ResearchReport, error)
}

// MultiAgentResearcher - agent.Coordinator
type MultiAgentResearcher interface {
	Process(ctx context.Context, topic string) (*domain.SynthesisReport, error)
}

type ResearchDeps struct {
	Layered    DepthResearcher
	MultiAgent MultiAgentResearcher
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Timeout    time.Duration // на все исследование целиком
}

// ResearchService - точка входа для бота и CLI: валидация темы,
// общий таймаут, логи и метрики вокруг двух стратегий.
type ResearchService struct {
	layered    DepthResearcher
	multiAgent MultiAgentResearcher
	logger     *zap.Logger
	metrics    *metrics.Metrics
	timeout    time.Duration
}

func NewResearchService(deps ResearchDeps) *ResearchService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Timeout == 0 {
		deps.Timeout = 180 * time.Second
	}
	return &ResearchService{
		layered:    deps.Layered,
		multiAgent: deps.MultiAgent,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		timeout:    deps.Timeout,
	}
}

func (s *ResearchService) RunLayeredResearch(ctx context.Context, topic string) (*domain.ResearchReport, error) {
	res, err := s.Run(ctx, domain.ResearchRequest{Topic: topic, Mode: domain.ModeDepth})
	if err != nil {
		return nil, err
	}
	return res.Layered, nil
}

func (s *ResearchService) RunMultiAgentResearch(ctx context.Context, topic string) (*domain.SynthesisReport, error) {
	res, err := s.Run(ctx, domain.ResearchRequest{Topic: topic, Mode: domain.ModeMulti})
	if err != nil {
		return nil, err
	}
	return res.Synthesis, nil
}

func (s *ResearchService) Run(ctx context.Context, req domain.ResearchRequest) (*domain.Result, error) {
	start := time.Now()
	mode := req.Mode.String()

	if s.metrics != nil {
		s.metrics.IncResearchInFlight()
		defer s.metrics.DecResearchInFlight()
	}

	if err := req.Validate(); err != nil {
		s.record(mode, "validation_error", start)
		return nil, err
	}
	req.Sanitize()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Info("research started",
		zap.String("mode", mode),
		zap.String("topic", req.Topic),
	)

	result := &domain.Result{Mode: req.Mode}
	var (
		sources int
		err     error
	)

	switch req.Mode {
	case domain.ModeDepth:
		result.Layered, err = s.layered.Run(ctx, req.Topic)
		if err == nil {
			sources = len(result.Layered.Sources)
		}
	case domain.ModeMulti:
		result.Synthesis, err = s.multiAgent.Process(ctx, req.Topic)
		if err == nil {
			sources = len(result.Synthesis.AllSources())
		}
	}

	if err != nil {
		s.record(mode, errorStatus(err), start)
		s.logger.Error("research failed",
			zap.String("mode", mode),
			zap.String("topic", req.Topic),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(mode, "success", start)
	if s.metrics != nil {
		s.metrics.RecordReportSources(mode, sources)
	}
	s.logger.Info("research done",
		zap.String("mode", mode),
		zap.String("topic", req.Topic),
		zap.Int("sources", sources),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *ResearchService) record(mode, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordResearch(mode, status, time.Since(start))
	}
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrSearchFailed):
		return "search_error"
	case errors.Is(err, domain.ErrCompletionFailed):
		return "completion_error"
	}
	return "error"
}
