package config

// Version is the foray binary version.
// Set at build time via: -ldflags "-X github.com/forayhq/foray/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
