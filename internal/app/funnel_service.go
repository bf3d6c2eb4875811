package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"truthschool-funnel/internal/domain"
	"truthschool-funnel/internal/flow"
)

// VisitRepository abstracts how open visits are tracked (in-memory, Redis, etc).
type VisitRepository interface {
	Register(visit *Visit)
	Get(id string) (*Visit, bool)
	Remove(id string)
	Count() int
}

// Toucher is implemented by visit stores that expire idle visits.
type Toucher interface {
	Touch(ctx context.Context, id string) error
}

// QuestionnaireRepository loads questionnaire content (from cache/backing store).
type QuestionnaireRepository interface {
	GetQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error)
}

// Config selects what every new visit runs.
type Config struct {
	QuestionnaireID string
	CountdownFrom   int
}

// FunnelService opens and closes waitlist flows, one per page visit.
type FunnelService struct {
	visits         VisitRepository
	questionnaires QuestionnaireRepository
	gateway        flow.Gateway
	cfg            Config
	flowOpts       []flow.Option
	log            zerolog.Logger
	now            func() time.Time
}

func NewFunnelService(visits VisitRepository, questionnaires QuestionnaireRepository, gateway flow.Gateway, cfg Config, log zerolog.Logger, flowOpts ...flow.Option) *FunnelService {
	return &FunnelService{
		visits:         visits,
		questionnaires: questionnaires,
		gateway:        gateway,
		cfg:            cfg,
		flowOpts:       flowOpts,
		log:            log,
		now:            time.Now,
	}
}

// NewFunnelServiceWithClock is test-only for deterministic timestamps.
func NewFunnelServiceWithClock(visits VisitRepository, questionnaires QuestionnaireRepository, gateway flow.Gateway, cfg Config, now func() time.Time, flowOpts ...flow.Option) *FunnelService {
	s := NewFunnelService(visits, questionnaires, gateway, cfg, zerolog.Nop(), flowOpts...)
	s.now = now
	return s
}

// Open starts a fresh flow for a page visit. nav receives the hand-off once the flow completes.
func (s *FunnelService) Open(ctx context.Context, nav flow.Navigator) (*Visit, error) {
	questionnaire, err := s.questionnaires.GetQuestionnaire(ctx, s.cfg.QuestionnaireID)
	if err != nil {
		return nil, fmt.Errorf("load questionnaire %q: %w", s.cfg.QuestionnaireID, err)
	}
	machine, err := flow.NewMachine(questionnaire, s.cfg.CountdownFrom)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := s.log.With().Str("visit", id).Logger()
	opts := append([]flow.Option{flow.WithLogger(logger)}, s.flowOpts...)
	visit := &Visit{
		ID:       id,
		OpenedAt: s.now(),
		Flow:     flow.NewController(machine, s.gateway, nav, opts...),
	}
	s.visits.Register(visit)
	logger.Debug().Str("questionnaire", questionnaire.ID).Msg("visit opened")
	return visit, nil
}

// Visit looks up an open visit.
func (s *FunnelService) Visit(id string) (*Visit, error) {
	visit, ok := s.visits.Get(id)
	if !ok {
		return nil, domain.ErrVisitNotFound
	}
	return visit, nil
}

// Close ends a visit: its countdown is released and it is forgotten.
func (s *FunnelService) Close(id string) {
	visit, ok := s.visits.Get(id)
	if !ok {
		return
	}
	visit.Flow.Close()
	s.visits.Remove(id)
	s.log.Debug().Str("visit", id).Str("phase", string(visit.Flow.Snapshot().Phase)).Msg("visit closed")
}

// Touch marks a visit as still active when the store tracks liveness.
func (s *FunnelService) Touch(ctx context.Context, id string) {
	toucher, ok := s.visits.(Toucher)
	if !ok {
		return
	}
	if err := toucher.Touch(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("visit", id).Msg("visit touch failed")
	}
}

// ActiveVisits counts open visits.
func (s *FunnelService) ActiveVisits() int {
	return s.visits.Count()
}

// Visit is one page visit and the flow it owns.
type Visit struct {
	ID       string
	OpenedAt time.Time
	Flow     *flow.Controller
}

// Info summarizes the visit for diagnostics.
func (v *Visit) Info() domain.VisitInfo {
	state := v.Flow.Snapshot()
	return domain.VisitInfo{
		ID:        v.ID,
		OpenedAt:  v.OpenedAt,
		Phase:     state.Phase,
		Navigated: state.Navigated,
	}
}
