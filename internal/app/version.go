package app

// Version is the semantic version of promptd, set at build time via -ldflags.
var Version = "dev"
