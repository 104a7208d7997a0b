package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0   // Clean exit, variations written
	ExitNoVariations  = 1   // Nothing matched; no variation generated
	ExitUserError     = 2   // Invalid arguments or configuration
	ExitInputError    = 3   // Unreadable or malformed input document
	ExitInternalError = 4   // Unexpected internal error
	ExitInterrupted   = 130 // Second Ctrl-C during shutdown
)
