package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "libroom"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Room scheduling defaults: the reading room is bookable 08:00-18:00 in
	// two-hour slots, up to 90 days ahead, and is closed on Sundays.
	DefaultOperatingWindowStart = "08:00"
	DefaultOperatingWindowEnd   = "18:00"
	DefaultSlotLengthMin        = 120
	DefaultHorizonDays          = 90
	DefaultClosedWeekdays       = "Sunday"

	DefaultRequestNumberPrefix = "RSV"
	DefaultSlotLockTTL         = 10 * time.Second

	DefaultPaginationLimit = 100
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)
