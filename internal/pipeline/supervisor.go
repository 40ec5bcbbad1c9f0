// Package pipeline orchestrates a chat request through its stages: collect,
// research, write, critique. The supervisor owns the iteration bound and the
// terminal-event guarantee.
package pipeline

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
	"github.com/ternarybob/auspex/internal/services/agents"
)

// Supervisor runs the chat pipeline for one request at a time. It is
// stateless between runs; per-request state lives on the stack of Run.
type Supervisor struct {
	extractor  interfaces.TickerExtractor
	collector  interfaces.Collector
	researcher interfaces.Researcher
	writer     interfaces.Writer
	critic     interfaces.Critic
	config     *common.PipelineConfig
	logger     arbor.ILogger
}

// NewSupervisor creates a new pipeline supervisor
func NewSupervisor(
	extractor interfaces.TickerExtractor,
	collector interfaces.Collector,
	researcher interfaces.Researcher,
	writer interfaces.Writer,
	critic interfaces.Critic,
	config *common.PipelineConfig,
	logger arbor.ILogger,
) *Supervisor {
	return &Supervisor{
		extractor:  extractor,
		collector:  collector,
		researcher: researcher,
		writer:     writer,
		critic:     critic,
		config:     config,
		logger:     logger,
	}
}

// Run executes the pipeline for a query, emitting progress events through
// the sink. Exactly one terminal event is sent: {done:true} on success or
// {error, done:true} on failure, including panics in any stage.
func (s *Supervisor) Run(ctx context.Context, query string, sink interfaces.EventSink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
			s.logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("Pipeline stage panicked")
			s.sendTerminal(sink, err)
		}
	}()

	if err := s.run(ctx, query, sink); err != nil {
		s.sendTerminal(sink, err)
		return err
	}

	s.sendTerminal(sink, nil)
	return nil
}

func (s *Supervisor) run(ctx context.Context, query string, sink interfaces.EventSink) error {
	// Collect: refresh data for every mentioned ticker. One symbol's
	// failure is logged and the rest still run.
	if err := sink.Send(models.StatusEvent("Finding out what data we need...")); err != nil {
		return err
	}

	symbols, err := s.extractor.ExtractTickers(ctx, query)
	if err != nil {
		return err
	}
	for _, symbol := range symbols {
		if err := s.collector.Collect(ctx, symbol, sink); err != nil {
			if ctx.Err() != nil {
				return err
			}
			s.logger.Warn().
				Err(err).
				Str("symbol", symbol).
				Msg("Collection failed for symbol, continuing")
		}
	}

	iteration := 0
	for {
		// Research.
		if err := sink.Send(models.StatusEvent("Thinking...")); err != nil {
			return err
		}

		research, err := s.researcher.Research(ctx, query, sink)
		if err != nil {
			return err
		}
		if research == "" || research == agents.NotRelevantSentinel {
			// The writer handles off-topic queries itself; it just gets no
			// evidence to lean on.
			research = agents.NoResearchSentinel
		}

		// Write.
		answer, err := s.writer.Write(ctx, query, research, sink)
		if err != nil {
			return err
		}

		// Critique: the bound is checked before the increment, so
		// maxIterations caps the number of review rounds, not answers.
		if iteration >= s.config.MaxIterations {
			s.logger.Debug().
				Int("iteration", iteration).
				Msg("Iteration bound reached, accepting answer")
			return nil
		}
		iteration++

		passed, err := s.critic.Review(ctx, query, answer)
		if err != nil {
			return err
		}
		if passed {
			return nil
		}

		s.logger.Debug().
			Int("iteration", iteration).
			Msg("Answer rejected by review, rerunning research")
	}
}

// sendTerminal emits the single terminal event for the request. A sink
// failure here means the client is gone; nothing is left to do but log.
func (s *Supervisor) sendTerminal(sink interfaces.EventSink, runErr error) {
	var event models.Event
	if runErr != nil {
		event = models.ErrorEvent(runErr)
	} else {
		event = models.DoneEvent()
	}
	if err := sink.Send(event); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to send terminal event")
	}
}
