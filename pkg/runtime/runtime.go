package runtime

// Set at build time via -ldflags.
var (
	Version   = "0.0.0-dev"
	GitCommit = "dev"
	Timestamp = ""
)
