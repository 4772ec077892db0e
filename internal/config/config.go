package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultReplenishSchedule is the cron spec for the FixBits
	// replenishment worker.
	DefaultReplenishSchedule = "@hourly"
)
