package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "FEEDBACKFIX"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv  = "FEEDBACKFIX_APP_ENV"
	EnvAppPort = "FEEDBACKFIX_APP_PORT"

	EnvDBDSN  = "FEEDBACKFIX_DB_DSN"
	EnvDBHost = "FEEDBACKFIX_DB_HOST"
	EnvDBUser = "FEEDBACKFIX_DB_USER"
	EnvDBName = "FEEDBACKFIX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
