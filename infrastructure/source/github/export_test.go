package github

// MapError exports mapError for testing.
var MapError = mapError //nolint:gochecknoglobals // test export

// NewWithClient exports newWithClient for testing.
var NewWithClient = newWithClient //nolint:gochecknoglobals // test export
