// Package ui provides the Bubble Tea terminal view for the dashboard.
package ui

// StateChanged is sent when the controller reports a store change.
type StateChanged struct{}

// IntentDone is sent when an intent command returns. Failures are already
// recorded in the content store; Err is kept for logging and tests.
type IntentDone struct {
	Intent string
	Err    error
}
