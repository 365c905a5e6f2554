package harness

import (
	"sort"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/reducer"
)

// TraceSnapshot captures what a scenario did: its flow trace plus a
// per-tenant summary of the final state. Timestamps and generated movement
// ids are left out so the snapshot reads as business facts.
type TraceSnapshot struct {
	Scenario string                   `json:"scenario"`
	Steps    []TraceEvent             `json:"steps"`
	Tenants  map[string]TenantSummary `json:"tenants"`
}

// TenantSummary is the snapshot of one tenant.
type TenantSummary struct {
	Products  int                                   `json:"products"`
	Stock     map[string]map[string]decimal.Decimal `json:"stock"`
	Movements int                                   `json:"movements"`
	Journal   []string                              `json:"journal"`
}

// Snapshot builds the snapshot of a finished run.
func Snapshot(name string, result *Result) TraceSnapshot {
	snap := TraceSnapshot{
		Scenario: name,
		Steps:    result.Trace,
		Tenants:  map[string]TenantSummary{},
	}
	if result.State == nil {
		return snap
	}
	for id, cd := range result.State.CompanyData {
		snap.Tenants[id] = summarize(result.State, id, cd)
	}
	return snap
}

func summarize(s *reducer.State, id string, cd *reducer.CompanyData) TenantSummary {
	sum := TenantSummary{
		Stock:   map[string]map[string]decimal.Decimal{},
		Journal: []string{},
	}
	if cd != nil {
		sum.Movements = len(cd.StockMovements)
		if cd.Supermarket != nil {
			sum.Products = len(cd.Supermarket.Products)
			for _, p := range cd.Supermarket.Products {
				sum.Stock[p.ID] = copyStock(p)
			}
		}
	}
	if ad := s.AccountingData[id]; ad != nil {
		for _, e := range ad.JournalEntries {
			sum.Journal = append(sum.Journal, e.ID)
		}
		sort.Strings(sum.Journal)
	}
	return sum
}

// MarshalSnapshot renders a snapshot as canonical JSON.
func MarshalSnapshot(snap TraceSnapshot) ([]byte, error) {
	return domain.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can inspect it further.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	out, err := MarshalSnapshot(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, out)
	return nil
}
