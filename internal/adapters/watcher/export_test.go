// export_test.go exports private knobs for white-box testing.
package watcher

import "time"

// SetRetryInterval shortens the pending-directory retry timer so tests
// do not wait for the production interval.
func (w *Watcher) SetRetryInterval(interval time.Duration) {
	w.retryInterval = interval
}
