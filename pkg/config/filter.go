package config

// FilterConfiguration holds expressions evaluated against every scanned file.
// A file matching any Ignore expression is never fingerprinted.
type FilterConfiguration struct {
	Ignore []string `koanf:"ignore"`
}
