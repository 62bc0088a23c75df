package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (config.yml or environment)
	ExitNetworkError = 3 // Zotero unreachable, rejected the key or kept failing
	ExitPDFError     = 4 // PDF conversion or verification failed
)
