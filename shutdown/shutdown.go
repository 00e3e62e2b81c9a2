// Package shutdown routes termination signals to the app's graceful exit.
package shutdown

import (
	"os"
	"os/signal"
)

// Notify relays the platform's termination signals to ch.
func Notify(ch chan<- os.Signal) {
	signal.Notify(ch, signals...)
}
