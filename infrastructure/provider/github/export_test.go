package github

// NewWithClient exports newWithClient for testing.
var NewWithClient = newWithClient //nolint:gochecknoglobals // test export
