package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyConsoleDbType string = "CONSOLE_DB_TYPE"
	EnvKeyConsoleDbPath string = "CONSOLE_DB_PATH"

	EnvKeyConsoleHttpHostPort   string = "CONSOLE_HTTP_HOST_PORT"
	EnvKeyConsoleApiBaseURL     string = "CONSOLE_API_BASE_URL"
	EnvKeyConsoleApiTimeoutSec  string = "CONSOLE_API_TIMEOUT_SEC"
	EnvKeyConsoleSessionSecret  string = "CONSOLE_SESSION_SECRET"
	EnvKeyConsoleSessionMaxAge  string = "CONSOLE_SESSION_MAX_AGE_SEC"
	EnvKeyConsoleAllowedOrigins string = "CONSOLE_ALLOWED_ORIGINS"

	EnvKeyConsoleLoginRate  string = "CONSOLE_LOGIN_RATE"
	EnvKeyConsoleLoginBurst string = "CONSOLE_LOGIN_BURST"

	LoggerNameConsoleCore   string = "console_core"
	LoggerNameConsoleServer string = "console_server"
	LoggerNameApiClient     string = "api_client"
	LoggerNameSession       string = "session"

	LoggerFieldCategory       string = "category"
	LoggerCategoryAuth        string = "auth"
	LoggerCategoryDevice      string = "device"
	LoggerCategoryUser        string = "user"
	LoggerCategoryNotify      string = "notify"
	LoggerCategoryDashboard   string = "dashboard"
	LoggerCategoryTelemetry   string = "telemetry"
	LoggerCategorySessionLoad string = "session_load"
	LoggerCategorySessionSave string = "session_save"
)
