package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
	"github.com/ternarybob/auspex/internal/services/agents"
)

// stub agents with function fields, defaulting to benign behavior.

type stubExtractor struct {
	fn func(ctx context.Context, query string) ([]string, error)
}

func (s *stubExtractor) ExtractTickers(ctx context.Context, query string) ([]string, error) {
	if s.fn != nil {
		return s.fn(ctx, query)
	}
	return nil, nil
}

type stubCollector struct {
	collected []string
	errFor    map[string]error
}

func (s *stubCollector) Collect(ctx context.Context, symbol string, sink interfaces.EventSink) error {
	s.collected = append(s.collected, symbol)
	if s.errFor != nil {
		return s.errFor[symbol]
	}
	return nil
}

type stubResearcher struct {
	results []string
	calls   int
	err     error
}

func (s *stubResearcher) Research(ctx context.Context, query string, sink interfaces.EventSink) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	result := "evidence"
	if s.calls < len(s.results) {
		result = s.results[s.calls]
	}
	s.calls++
	return result, nil
}

type stubWriter struct {
	research []string
	err      error
}

func (s *stubWriter) Write(ctx context.Context, query, research string, sink interfaces.EventSink) (string, error) {
	s.research = append(s.research, research)
	if s.err != nil {
		return "", s.err
	}
	if sink != nil {
		if err := sink.Send(models.TokenEvent("answer")); err != nil {
			return "", err
		}
	}
	return "answer", nil
}

type stubCritic struct {
	verdicts []bool
	calls    int
	err      error
}

func (s *stubCritic) Review(ctx context.Context, query, answer string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	verdict := true
	if s.calls < len(s.verdicts) {
		verdict = s.verdicts[s.calls]
	}
	s.calls++
	return verdict, nil
}

type recordSink struct {
	events []models.Event
}

func (s *recordSink) Send(event models.Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *recordSink) terminals() []models.Event {
	var out []models.Event
	for _, e := range s.events {
		if e.Done {
			out = append(out, e)
		}
	}
	return out
}

func newSupervisor(extractor *stubExtractor, collector *stubCollector, researcher *stubResearcher, writer *stubWriter, critic *stubCritic, maxIterations int) *Supervisor {
	return NewSupervisor(
		extractor,
		collector,
		researcher,
		writer,
		critic,
		&common.PipelineConfig{MaxIterations: maxIterations, ResearchCallBudget: 3},
		common.GetLogger(),
	)
}

func TestRunHappyPathSingleDoneTerminal(t *testing.T) {
	extractor := &stubExtractor{fn: func(ctx context.Context, query string) ([]string, error) {
		return []string{"ACME"}, nil
	}}
	collector := &stubCollector{}
	critic := &stubCritic{}
	sup := newSupervisor(extractor, collector, &stubResearcher{}, &stubWriter{}, critic, 1)

	sink := &recordSink{}
	err := sup.Run(context.Background(), "how is acme", sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"ACME"}, collector.collected)

	terminals := sink.terminals()
	require.Len(t, terminals, 1)
	assert.Empty(t, terminals[0].Error)
	assert.Equal(t, 1, critic.calls, "passing review ends the loop")
}

func TestRunCollectionFailureContinues(t *testing.T) {
	extractor := &stubExtractor{fn: func(ctx context.Context, query string) ([]string, error) {
		return []string{"BAD", "GOOD"}, nil
	}}
	collector := &stubCollector{errFor: map[string]error{"BAD": errors.New("provider down")}}
	sup := newSupervisor(extractor, collector, &stubResearcher{}, &stubWriter{}, &stubCritic{}, 1)

	sink := &recordSink{}
	err := sup.Run(context.Background(), "query", sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"BAD", "GOOD"}, collector.collected, "one symbol's failure must not stop the rest")
}

func TestRunEmptyResearchMapsToWriterSentinel(t *testing.T) {
	researcher := &stubResearcher{results: []string{""}}
	writer := &stubWriter{}
	sup := newSupervisor(&stubExtractor{}, &stubCollector{}, researcher, writer, &stubCritic{}, 1)

	err := sup.Run(context.Background(), "query", &recordSink{})
	require.NoError(t, err)
	require.Len(t, writer.research, 1)
	assert.Equal(t, agents.NoResearchSentinel, writer.research[0])
}

func TestRunNotRelevantMapsToWriterSentinel(t *testing.T) {
	researcher := &stubResearcher{results: []string{agents.NotRelevantSentinel}}
	writer := &stubWriter{}
	sup := newSupervisor(&stubExtractor{}, &stubCollector{}, researcher, writer, &stubCritic{}, 1)

	err := sup.Run(context.Background(), "best pasta recipe", &recordSink{})
	require.NoError(t, err)
	require.Len(t, writer.research, 1)
	assert.Equal(t, agents.NoResearchSentinel, writer.research[0])
}

func TestRunRejectedAnswerLoopsUntilIterationBound(t *testing.T) {
	// The critic always rejects; with MaxIterations 2 the pipeline writes
	// three answers and reviews twice, then accepts without a final review.
	researcher := &stubResearcher{}
	writer := &stubWriter{}
	critic := &stubCritic{verdicts: []bool{false, false, false}}
	sup := newSupervisor(&stubExtractor{}, &stubCollector{}, researcher, writer, critic, 2)

	sink := &recordSink{}
	err := sup.Run(context.Background(), "query", sink)
	require.NoError(t, err)

	assert.Equal(t, 3, researcher.calls)
	assert.Len(t, writer.research, 3)
	assert.Equal(t, 2, critic.calls)
	require.Len(t, sink.terminals(), 1)
	assert.Empty(t, sink.terminals()[0].Error)
}

func TestRunZeroIterationsSkipsCritic(t *testing.T) {
	critic := &stubCritic{}
	sup := newSupervisor(&stubExtractor{}, &stubCollector{}, &stubResearcher{}, &stubWriter{}, critic, 0)

	err := sup.Run(context.Background(), "query", &recordSink{})
	require.NoError(t, err)
	assert.Zero(t, critic.calls, "MaxIterations 0 accepts the first answer unreviewed")
}

func TestRunStageErrorSendsSingleErrorTerminal(t *testing.T) {
	researcher := &stubResearcher{err: errors.New("research blew up")}
	sup := newSupervisor(&stubExtractor{}, &stubCollector{}, researcher, &stubWriter{}, &stubCritic{}, 1)

	sink := &recordSink{}
	err := sup.Run(context.Background(), "query", sink)
	require.Error(t, err)

	terminals := sink.terminals()
	require.Len(t, terminals, 1)
	assert.Contains(t, terminals[0].Error, "research blew up")
}

func TestRunPanicBecomesErrorTerminal(t *testing.T) {
	extractor := &stubExtractor{fn: func(ctx context.Context, query string) ([]string, error) {
		panic("stage exploded")
	}}
	sup := newSupervisor(extractor, &stubCollector{}, &stubResearcher{}, &stubWriter{}, &stubCritic{}, 1)

	sink := &recordSink{}
	err := sup.Run(context.Background(), "query", sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline panic")

	terminals := sink.terminals()
	require.Len(t, terminals, 1)
	assert.Contains(t, terminals[0].Error, "pipeline panic")
}

func TestRunEventOrderStatusBeforeTokensBeforeTerminal(t *testing.T) {
	sup := newSupervisor(&stubExtractor{}, &stubCollector{}, &stubResearcher{}, &stubWriter{}, &stubCritic{}, 1)

	sink := &recordSink{}
	err := sup.Run(context.Background(), "query", sink)
	require.NoError(t, err)

	require.True(t, len(sink.events) >= 3)
	assert.Equal(t, "Finding out what data we need...", sink.events[0].Update)
	assert.Equal(t, "Thinking...", sink.events[1].Update)
	assert.True(t, sink.events[len(sink.events)-1].Done, "terminal event must come last")
}
