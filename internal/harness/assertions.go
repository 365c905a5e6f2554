package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/reducer"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Flow steps for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFlow:\n")
		for _, event := range e.Trace {
			mark := " "
			if event.Changed {
				mark = "*"
			}
			fmt.Fprintf(&buf, "  [%d]%s %s\n", event.Seq, mark, event.Action)
		}
	}

	return buf.String()
}

// AssertionContext provides the states assertions are evaluated against.
type AssertionContext struct {
	Baseline      *reducer.State
	State         *reducer.State
	Initial       stockIndex
	MovementsFrom map[string]int
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	var tree any

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertLedgerBalanced:
			err = assertLedgerBalanced(actx.State, assertion)
		case AssertStockConsistent:
			err = assertStockConsistent(actx, assertion)
		case AssertCount, AssertField:
			if tree == nil {
				tree, err = stateTree(actx.State)
				if err != nil {
					break
				}
			}
			if assertion.Type == AssertCount {
				err = assertCount(tree, assertion)
			} else {
				err = assertField(tree, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			var ae *AssertionError
			if errors.As(err, &ae) {
				ae.Trace = result.Trace
			}
			failures = append(failures, err.Error())
		}
	}

	return failures
}

// assertLedgerBalanced checks that each tenant's journal debits equal its
// credits, and that every entry balances on its own.
func assertLedgerBalanced(s *reducer.State, a Assertion) error {
	for _, id := range tenantIDs(s, a.Company) {
		ad := s.AccountingData[id]
		if ad == nil {
			if a.Company != "" {
				return &AssertionError{
					Type:     AssertLedgerBalanced,
					Expected: fmt.Sprintf("accounting data for %s", id),
					Actual:   "tenant has no ledger",
				}
			}
			continue
		}
		var debit, credit decimal.Decimal
		for _, e := range ad.JournalEntries {
			d, c := e.Totals()
			if !d.Equal(c) {
				return &AssertionError{
					Type:     AssertLedgerBalanced,
					Expected: fmt.Sprintf("entry %s debits equal credits", e.ID),
					Actual:   fmt.Sprintf("debits %s, credits %s", d, c),
				}
			}
			debit, credit = debit.Add(d), credit.Add(c)
		}
		if !debit.Equal(credit) {
			return &AssertionError{
				Type:     AssertLedgerBalanced,
				Expected: fmt.Sprintf("tenant %s debits equal credits", id),
				Actual:   fmt.Sprintf("debits %s, credits %s", debit, credit),
			}
		}
	}
	return nil
}

// assertStockConsistent checks, for every product and branch in scope, that
// the signed sum of movements recorded during the flow equals the change in
// stock since the product was first seen. Stock, if given, is the expected
// final quantity by branch.
func assertStockConsistent(actx *AssertionContext, a Assertion) error {
	s := actx.State
	for _, id := range tenantIDs(s, a.Company) {
		cd := s.CompanyData[id]
		if cd == nil || cd.Supermarket == nil {
			if a.Company != "" {
				return &AssertionError{
					Type:     AssertStockConsistent,
					Expected: fmt.Sprintf("products for %s", id),
					Actual:   "tenant has no product catalog",
				}
			}
			continue
		}

		moved := map[string]map[string]decimal.Decimal{}
		from := min(actx.MovementsFrom[id], len(cd.StockMovements))
		for _, m := range cd.StockMovements[from:] {
			if moved[m.ProductID] == nil {
				moved[m.ProductID] = map[string]decimal.Decimal{}
			}
			moved[m.ProductID][m.BranchID] = moved[m.ProductID][m.BranchID].Add(m.Quantity)
		}

		found := false
		for _, p := range cd.Supermarket.Products {
			if a.Product != "" && p.ID != a.Product {
				continue
			}
			found = true
			start := actx.Initial[id][p.ID]
			for _, branch := range branchUnion(start, p.StockByBranch, moved[p.ID]) {
				delta := p.Stock(branch).Sub(start[branch])
				if got := moved[p.ID][branch]; !delta.Equal(got) {
					return &AssertionError{
						Type:     AssertStockConsistent,
						Expected: fmt.Sprintf("%s/%s@%s movements sum to stock change %s", id, p.ID, branch, delta),
						Actual:   fmt.Sprintf("movements sum to %s", got),
					}
				}
			}
			for branch, want := range a.Stock {
				w, err := toDecimal(want)
				if err != nil {
					return fmt.Errorf("stock_consistent: branch %s: %w", branch, err)
				}
				if got := p.Stock(branch); !got.Equal(w) {
					return &AssertionError{
						Type:     AssertStockConsistent,
						Expected: fmt.Sprintf("%s/%s@%s stock %s", id, p.ID, branch, w),
						Actual:   fmt.Sprintf("stock %s", got),
					}
				}
			}
		}
		if a.Product != "" && !found {
			return &AssertionError{
				Type:     AssertStockConsistent,
				Expected: fmt.Sprintf("product %s in %s", a.Product, id),
				Actual:   "product not found",
			}
		}
	}
	return nil
}

func assertCount(tree any, a Assertion) error {
	v, err := resolvePath(tree, a.Path)
	if err != nil {
		return &AssertionError{Type: AssertCount, Expected: fmt.Sprintf("value at %s", a.Path), Actual: err.Error()}
	}
	var n int
	switch x := v.(type) {
	case []any:
		n = len(x)
	case map[string]any:
		n = len(x)
	case nil:
		n = 0
	default:
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("collection at %s", a.Path),
			Actual:   fmt.Sprintf("%T", v),
		}
	}
	if n != *a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d elements at %s", *a.Count, a.Path),
			Actual:   fmt.Sprintf("%d elements", n),
		}
	}
	return nil
}

func assertField(tree any, a Assertion) error {
	v, err := resolvePath(tree, a.Path)
	if err != nil {
		return &AssertionError{Type: AssertField, Expected: fmt.Sprintf("value at %s", a.Path), Actual: err.Error()}
	}
	if !stateValuesEqual(a.Expect, v) {
		return &AssertionError{
			Type:     AssertField,
			Expected: fmt.Sprintf("%s = %v", a.Path, a.Expect),
			Actual:   fmt.Sprintf("%s = %v", a.Path, v),
		}
	}
	return nil
}

// stateTree is the JSON form of s, numbers kept as json.Number.
func stateTree(s *reducer.State) (any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return tree, nil
}

// resolvePath walks a dot-separated path. An object segment is a key; an
// array segment is an index or the id of an element.
func resolvePath(tree any, path string) (any, error) {
	cur := tree
	walked := ""
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("no key %q under %q", seg, walked)
			}
			cur = v
		case []any:
			v, ok := arrayElement(node, seg)
			if !ok {
				return nil, fmt.Errorf("no element %q under %q", seg, walked)
			}
			cur = v
		default:
			return nil, fmt.Errorf("%q is not a collection", walked)
		}
		if walked != "" {
			walked += "."
		}
		walked += seg
	}
	return cur, nil
}

func arrayElement(arr []any, seg string) (any, bool) {
	if i, err := strconv.Atoi(seg); err == nil {
		if i < 0 || i >= len(arr) {
			return nil, false
		}
		return arr[i], true
	}
	for _, el := range arr {
		if obj, ok := el.(map[string]any); ok && obj["id"] == seg {
			return el, true
		}
	}
	return nil, false
}

// stateValuesEqual compares an expected YAML value with a value from the
// state tree. Numbers and decimal strings compare by value.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if e, err := toDecimal(expected); err == nil {
		if a, err := toDecimal(actual); err == nil {
			return e.Equal(a)
		}
	}

	switch exp := expected.(type) {
	case string:
		act, ok := actual.(string)
		return ok && exp == act
	case bool:
		act, ok := actual.(bool)
		return ok && exp == act
	}

	// Normalize the expected value to the tree's shapes for maps and lists.
	raw, err := json.Marshal(expected)
	if err != nil {
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var norm any
	if err := dec.Decode(&norm); err != nil {
		return false
	}
	return reflect.DeepEqual(norm, actual)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(x)
	default:
		return decimal.Decimal{}, fmt.Errorf("%v (%T) is not a number", v, v)
	}
}

// tenantIDs returns only, if set, or every tenant in sorted order.
func tenantIDs(s *reducer.State, only string) []string {
	if only != "" {
		return []string{only}
	}
	ids := make([]string, 0, len(s.CompanyData))
	for id := range s.CompanyData {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func branchUnion(maps ...map[string]decimal.Decimal) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range maps {
		for b := range m {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	sort.Strings(out)
	return out
}
