// Package harness runs reducer conformance scenarios.
//
// A scenario reduces a list of actions, exactly as they would be dispatched,
// and checks the resulting state against assertions that encode the
// business invariants: balanced ledgers, stock that agrees with its movement
// trail, and specific values in the state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:
//	  - action: ADD_COMPANY
//	    payload: { company: {...}, adminUser: {...} }
//	flow:
//	  - action: ADD_SUPERMARKET_PRODUCT
//	    payload: { companyId: c1, product: {...} }
//	    expect: { changed: true }
//	assertions:
//	  - type: ledger_balanced
//	  - type: stock_consistent
//	    company: c1
//	    product: p1
//	    stock: { b1: 20 }
//	  - type: count
//	    path: companyData.c1.stockMovements
//	    count: 2
//	  - type: field
//	    path: payrollRecords.c1.pr_u2_2024-01.status
//	    expect: Paid
//
// # Assertion Types
//
//   - ledger_balanced: every journal entry, and every tenant's journal as a
//     whole, has equal debits and credits
//   - stock_consistent: for each product and branch, the movements recorded
//     during the flow sum to the change in stock; optionally checks final stock
//   - count: the array or object at a path has N elements
//   - field: the value at a path equals the expected value
//
// Paths walk the state's JSON form. Within an array a segment is either an
// index or the id of an element. Numbers and decimal strings compare by value.
//
// # Deterministic Testing
//
// Every run uses a fresh reducer with a sequence id generator and a
// deterministic clock, so a product added without an id is always "sp_1"
// in a scenario whose setup supplies its own ids. RunWithGolden compares a
// snapshot of the run with testdata/golden/{name}.golden.
package harness
