package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"libroom/pkg/client"
	"libroom/pkg/logger"

	"github.com/joho/godotenv"
)

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Room scheduling rules. The operating window length must divide evenly
	// into slots of SlotLengthMin; Validate enforces it once at startup so
	// the slot resolver never has to.
	OperatingWindowStart string
	OperatingWindowEnd   string
	SlotLengthMin        int
	HorizonDays          int
	ClosedWeekdays       []string

	RequestNumberPrefix string
	SlotLockTTL         time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		OperatingWindowStart: getEnvStr(EnvOperatingWindowStart, DefaultOperatingWindowStart),
		OperatingWindowEnd:   getEnvStr(EnvOperatingWindowEnd, DefaultOperatingWindowEnd),
		SlotLengthMin:        getEnvNum(EnvSlotLengthMin, DefaultSlotLengthMin),
		HorizonDays:          getEnvNum(EnvHorizonDays, DefaultHorizonDays),
		ClosedWeekdays:       splitList(getEnvStr(EnvClosedWeekdays, DefaultClosedWeekdays)),

		RequestNumberPrefix: getEnvStr(EnvRequestNumberPrefix, DefaultRequestNumberPrefix),
		SlotLockTTL:         getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.LevelInfo),
			Format:    logger.FormatJSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	startMin, startOK := parseTimeOfDay(cfg.OperatingWindowStart)
	if !startOK {
		errors = append(errors, fmt.Sprintf("OperatingWindowStart must be in HH:MM format, got: %s", cfg.OperatingWindowStart))
	}
	endMin, endOK := parseTimeOfDay(cfg.OperatingWindowEnd)
	if !endOK {
		errors = append(errors, fmt.Sprintf("OperatingWindowEnd must be in HH:MM format, got: %s", cfg.OperatingWindowEnd))
	}
	if startOK && endOK {
		if endMin <= startMin {
			errors = append(errors, fmt.Sprintf("OperatingWindowEnd (%s) must be after OperatingWindowStart (%s)", cfg.OperatingWindowEnd, cfg.OperatingWindowStart))
		} else if cfg.SlotLengthMin <= 0 {
			errors = append(errors, fmt.Sprintf("SlotLengthMin must be positive, got: %d", cfg.SlotLengthMin))
		} else if (endMin-startMin)%cfg.SlotLengthMin != 0 {
			errors = append(errors, fmt.Sprintf("operating window length (%d min) must be evenly divisible by SlotLengthMin (%d)", endMin-startMin, cfg.SlotLengthMin))
		}
	}

	if cfg.HorizonDays <= 0 {
		errors = append(errors, fmt.Sprintf("HorizonDays must be positive, got: %d", cfg.HorizonDays))
	}
	for _, day := range cfg.ClosedWeekdays {
		if !validWeekday(day) {
			errors = append(errors, fmt.Sprintf("ClosedWeekdays contains an invalid weekday: %s", day))
		}
	}
	if len(cfg.ClosedWeekdays) >= 7 {
		errors = append(errors, "ClosedWeekdays cannot cover the whole week")
	}

	if cfg.RequestNumberPrefix == "" {
		errors = append(errors, "RequestNumberPrefix cannot be empty")
	}
	if cfg.SlotLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SlotLockTTL must be positive, got: %s", cfg.SlotLockTTL))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"operating_window_start", cfg.OperatingWindowStart,
		"operating_window_end", cfg.OperatingWindowEnd,
		"slot_length_min", cfg.SlotLengthMin,
		"horizon_days", cfg.HorizonDays,
		"closed_weekdays", cfg.ClosedWeekdays,
		"request_number_prefix", cfg.RequestNumberPrefix,
		"slot_lock_ttl", cfg.SlotLockTTL,
	)
}

// ClosedTimeWeekdays converts the configured weekday names to time.Weekday.
// Validate already rejected unknown names.
func (cfg *Config) ClosedTimeWeekdays() []time.Weekday {
	out := make([]time.Weekday, 0, len(cfg.ClosedWeekdays))
	for _, name := range cfg.ClosedWeekdays {
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.EqualFold(d.String(), name) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func parseTimeOfDay(s string) (int, bool) {
	if !timeOfDayRegex.MatchString(s) {
		return 0, false
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func validWeekday(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > DefaultPaginationLimit {
		return DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
