package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvOperatingWindowStart = "OPERATING_WINDOW_START"
	EnvOperatingWindowEnd   = "OPERATING_WINDOW_END"
	EnvSlotLengthMin        = "SLOT_LENGTH_MIN"
	EnvHorizonDays          = "HORIZON_DAYS"
	EnvClosedWeekdays       = "CLOSED_WEEKDAYS"

	EnvRequestNumberPrefix = "REQUEST_NUMBER_PREFIX"
	EnvSlotLockTTL         = "SLOT_LOCK_TTL"
)
