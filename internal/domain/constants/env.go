package constants

// Deployment environments recognised by env.env.
const (
	EnvLocal   = "local"
	EnvDevelop = "develop"
	EnvProd    = "prod"
)
