// Package config handles lumina list configuration.
package config

const (
	// DefaultDir is the default list directory name.
	DefaultDir = ".lumina"
	// DefaultTasksDir is the default tasks subdirectory name.
	DefaultTasksDir = "tasks"
	// DefaultPriority is the default priority for new tasks (none).
	DefaultPriority = ""

	// DefaultInterval is how often the scheduler evaluates deadlines.
	DefaultInterval = "30s"
	// DefaultTimedOffset is the alert lead time for tasks due at a time of day.
	DefaultTimedOffset = "30m"
	// DefaultDateOnlyOffset is the alert lead time for date-only tasks.
	DefaultDateOnlyOffset = "24h"

	// DefaultStoreDriver selects the markdown file store.
	DefaultStoreDriver = StoreDriverFile

	// DefaultBannerDuration is how long the TUI shows an in-app alert.
	DefaultBannerDuration = "6s"

	// DefaultServeAddr is the listen address for `lumina serve`.
	DefaultServeAddr = "127.0.0.1:7410"

	// ConfigFileName is the name of the config file within the list directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3

	// DatabaseURLEnv overrides store.database_url when set.
	DatabaseURLEnv = "LUMINA_DATABASE_URL"
)

// Store drivers.
const (
	StoreDriverFile     = "file"
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// DefaultPriorities lists priorities from most to least urgent.
var DefaultPriorities = []string{
	"high",
	"medium",
	"low",
}

// StoreDrivers lists the accepted store.driver values.
var StoreDrivers = []string{StoreDriverFile, StoreDriverMemory, StoreDriverPostgres}

// boolPtr returns a pointer to the given bool value.
func boolPtr(v bool) *bool { return &v }
