package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/reducer"
	"github.com/roach88/procount/internal/testutil"
)

// Harness runs scenarios against a reducer with deterministic ids and
// timestamps, so the same scenario always produces the same state.
type Harness struct {
	reducer *reducer.Reducer
	log     *logrus.Entry

	// initial is the first stock seen per tenant, product and branch:
	// after setup for existing products, at creation for products the flow
	// adds.
	initial stockIndex
	// movementsFrom is each tenant's movement count after setup.
	movementsFrom map[string]int
}

type Option func(*Harness)

// WithLogger sets the logger. Scenario runs are silent by default.
func WithLogger(l *logrus.Logger) Option {
	return func(h *Harness) { h.log = l.WithField("module", "harness") }
}

// stockIndex maps tenant → product → branch → quantity.
type stockIndex map[string]map[string]map[string]decimal.Decimal

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Create a reducer with a sequence id generator and a deterministic clock
// 2. Reduce setup steps from an empty state
// 3. Reduce flow steps, tracing each and checking its expect clause
// 4. Evaluate assertions against the final state
//
// A step whose payload cannot be decoded is an error; a failed expectation
// or assertion is recorded in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	h := &Harness{
		reducer: reducer.New(
			testutil.NewSequenceGenerator(),
			testutil.NewDeterministicClock(testutil.Epoch, time.Second),
		),
		log:           quiet.WithField("module", "harness"),
		initial:       stockIndex{},
		movementsFrom: map[string]int{},
	}
	for _, opt := range opts {
		opt(h)
	}

	state := reducer.NewState()
	for i, step := range scenario.Setup {
		act, err := decodeStep(step)
		if err != nil {
			return nil, fmt.Errorf("setup step %d: %w", i, err)
		}
		state = h.reducer.Reduce(state, act)
	}

	result := NewResult()
	result.Baseline = state
	for id, cd := range state.CompanyData {
		h.movementsFrom[id] = len(cd.StockMovements)
	}
	h.initial.observe(state)

	for i, step := range scenario.Flow {
		act, err := decodeStep(step)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		next := h.reducer.Reduce(state, act)
		changed := next != state
		result.AddTrace(step.Action, changed)

		if step.Expect != nil && step.Expect.Changed != nil && *step.Expect.Changed != changed {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected changed=%t, got %t",
				i, step.Action, *step.Expect.Changed, changed))
		}
		h.log.WithFields(logrus.Fields{
			"step":    i,
			"action":  step.Action,
			"changed": changed,
		}).Debug("flow step reduced")

		state = next
		h.initial.observe(state)
	}
	result.State = state

	actx := &AssertionContext{
		Baseline:      result.Baseline,
		State:         state,
		Initial:       h.initial,
		MovementsFrom: h.movementsFrom,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func decodeStep(step Step) (reducer.Action, error) {
	raw, err := step.payload()
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", step.Action, err)
	}
	return reducer.Decode(step.Action, raw)
}

// observe records the stock of every product not seen before.
func (idx stockIndex) observe(s *reducer.State) {
	for id, cd := range s.CompanyData {
		if cd == nil || cd.Supermarket == nil {
			continue
		}
		for _, p := range cd.Supermarket.Products {
			if _, seen := idx[id][p.ID]; seen {
				continue
			}
			if idx[id] == nil {
				idx[id] = map[string]map[string]decimal.Decimal{}
			}
			idx[id][p.ID] = copyStock(p)
		}
	}
}

func copyStock(p domain.Product) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(p.StockByBranch))
	for b, q := range p.StockByBranch {
		out[b] = q
	}
	return out
}
