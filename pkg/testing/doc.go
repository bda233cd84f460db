// Package testing provides a component testing harness for flywire.
//
// # Quick Start
//
// Create a tester, mount a tree, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := flywiretest.NewTesterWithT(t)
//	    tester.Mount(tree.T(&counter{}, nil))
//
//	    tester.Click("+")
//
//	    if !tester.Find(flywiretest.ByText("Count: 1")).Exists() {
//	        t.Error("expected 'Count: 1'")
//	    }
//	}
//
// # Snapshot Testing
//
// Capture and compare the retained tree and the widgets on the surface:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/counter.snapshot.yaml")
//
// Update snapshots with:
//
//	FLYWIRE_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Timer Testing
//
// Time only moves when the test says so:
//
//	tester.Advance(time.Second)
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import flywiretest "github.com/go-drift/flywire/pkg/testing"
package testing
