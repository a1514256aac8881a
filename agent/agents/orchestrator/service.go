package orchestrator

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	nodex "github.com/rayadhanush/Dining-concierge-bot/agent/nodes"
	preferencex "github.com/rayadhanush/Dining-concierge-bot/agent/preference"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

// Config is read with the DIALOGUE prefix. Empty lists use the built-in
// city and cuisine sets.
type Config struct {
	SupportedCities   []string `split_words:"true"`
	SupportedCuisines []string `split_words:"true"`
}

// Orchestrator runs one dining dialogue turn: it validates the collected
// slots, offers the cached search, and submits completed reservations.
type Orchestrator struct {
	cache     contractx.PreferenceCache
	submitter contractx.Submitter
	validator nodex.SlotValidator

	graphRunner compose.Runnable[contractx.TurnRequest, contractx.TurnResponse]
}

func New(
	cache contractx.PreferenceCache,
	submitter contractx.Submitter,
	cfg Config,
) (*Orchestrator, error) {
	if submitter == nil {
		return nil, errors.New("request submitter is required")
	}
	if cache == nil {
		cache = noopPreferenceCache{}
	}

	o := &Orchestrator{
		cache:     cache,
		submitter: submitter,
		validator: slotx.NewValidator(cfg.SupportedCities, cfg.SupportedCuisines),
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn returns ErrUnsupportedIntent for unknown intents and wraps queue
// failures in ErrSubmitFailed.
func (o *Orchestrator) HandleTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	return o.graphRunner.Invoke(ctx, req)
}

type noopPreferenceCache struct{}

func (noopPreferenceCache) Get(context.Context, string) (preferencex.Record, bool) {
	return preferencex.Record{}, false
}

func (noopPreferenceCache) Put(context.Context, string, preferencex.Record) error {
	return nil
}

func (noopPreferenceCache) Update(context.Context, string, preferencex.Record) error {
	return nil
}
