package lifecycle

// export_test.go exports private knobs for white-box testing.

// Done exposes the loop shutdown signal so tests can wait for a clean
// exit.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}
