// Package simulation provides a multi-generation test harness for validating
// the emergent dynamics of the epidemic engine.
//
// The harness drives the real grid, movement resolver, infection engine and
// recovery calendar with no mocks. Scenarios are Go builders that configure a
// population (random or explicitly placed), run a number of generations, and
// capture a snapshot after each one for property-based assertions.
//
// Each test gets a sandboxed HOME and its own event trace directory via
// t.TempDir().
//
// Usage:
//
//	func TestImmunityHolds(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:        "immunity-holds",
//	        Config:      simulation.SmallConfig(),
//	        Seed:        7,
//	        Generations: 60,
//	    })
//	    simulation.AssertImmunityMonotonic(t, result)
//	}
package simulation
