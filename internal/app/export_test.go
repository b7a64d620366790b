package app

// export_test.go exports private knobs for white-box testing.

var NewLogListener = newLogListener
