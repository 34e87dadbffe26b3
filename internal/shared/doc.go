// Package shared holds helpers used by more than one package's tests.
//
// The testutil subpackage provides:
//
//	- LogCapture, an slog handler that records entries for assertions
//	- CSV product fixtures laid out the way the catalog expects them
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    root := t.TempDir()
//	    testutil.WriteProduct(t, root, "Pharma", "aspirin", testutil.PharmaCSV(8))
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelWarn, "request failed")
//	}
package shared
