package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify list configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

// stringField builds a writable accessor over a string field. Validation
// runs on the whole config before saving.
func stringField(field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get:      func(c *config.Config) any { return *field(c) },
		set:      func(c *config.Config, v string) error { *field(c) = v; return nil },
		writable: true,
	}
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"list.name":        stringField(func(c *config.Config) *string { return &c.List.Name }),
		"list.description": stringField(func(c *config.Config) *string { return &c.List.Description }),
		"tasks_dir": {
			get: func(c *config.Config) any { return c.TasksDir },
		},
		"priorities": {
			get: func(c *config.Config) any { return c.Priorities },
		},
		"defaults.priority": {
			get: func(c *config.Config) any { return c.Defaults.Priority },
			set: func(c *config.Config, v string) error {
				if v != "" && config.IndexOf(c.Priorities, v) < 0 {
					return clierr.Newf(clierr.InvalidInput,
						"invalid default priority %q; allowed: %s", v, strings.Join(c.Priorities, ", "))
				}
				c.Defaults.Priority = v
				return nil
			},
			writable: true,
		},
		"scheduler.interval":         stringField(func(c *config.Config) *string { return &c.Scheduler.Interval }),
		"scheduler.timed_offset":     stringField(func(c *config.Config) *string { return &c.Scheduler.TimedOffset }),
		"scheduler.date_only_offset": stringField(func(c *config.Config) *string { return &c.Scheduler.DateOnlyOffset }),
		"scheduler.desktop_notifications": {
			get: func(c *config.Config) any { return c.DesktopNotificationsEnabled() },
			set: func(c *config.Config, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput,
						"invalid scheduler.desktop_notifications %q: must be true or false", v)
				}
				c.Scheduler.DesktopNotifications = &b
				return nil
			},
			writable: true,
		},
		"store.driver": stringField(func(c *config.Config) *string { return &c.Store.Driver }),
		"store.database_url": {
			get: func(c *config.Config) any { return redactURL(c.Store.DatabaseURL) },
			set: func(c *config.Config, v string) error {
				c.Store.DatabaseURL = v
				return nil
			},
			writable: true,
		},
		"tui.banner_duration": stringField(func(c *config.Config) *string { return &c.TUI.BannerDuration }),
		"tui.hide_completed": {
			get: func(c *config.Config) any { return c.TUI.HideCompleted },
			set: func(c *config.Config, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput,
						"invalid tui.hide_completed %q: must be true or false", v)
				}
				c.TUI.HideCompleted = b
				return nil
			},
			writable: true,
		},
		"serve.addr": stringField(func(c *config.Config) *string { return &c.Serve.Addr }),
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"list.name",
		"list.description",
		"tasks_dir",
		"priorities",
		"defaults.priority",
		"scheduler.interval",
		"scheduler.timed_offset",
		"scheduler.date_only_offset",
		"scheduler.desktop_notifications",
		"store.driver",
		"store.database_url",
		"tui.banner_duration",
		"tui.hide_completed",
		"serve.addr",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-34s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidInput, err.Error())
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		return strings.Join(v, ", ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// redactURL hides the password in a database URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
