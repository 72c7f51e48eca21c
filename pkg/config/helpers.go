package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// SetValue sets a setting by its YAML key.
// Supported keys:
//   - dest_dir: string
//   - http_timeout: duration, e.g. 30s
//   - max_parallel: int
//   - max_parallel_repos: int
//   - user_agent: string
//   - log_level: debug, info, warn, error
//   - log_format: text, json
//   - log_file: string
//   - post_sync_hook: string
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "dest_dir":
		c.Settings.DestDir = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "max_parallel":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		c.Settings.MaxParallel = n
	case "max_parallel_repos":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		c.Settings.MaxParallelRepos = n
	case "user_agent":
		c.Settings.UserAgent = value
	case "log_level":
		c.Settings.LogLevel = value
	case "log_format":
		c.Settings.LogFormat = value
	case "log_file":
		c.Settings.LogFile = value
	case "post_sync_hook":
		c.Settings.PostSyncHook = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return validateSettings(c.Settings)
}

// GetValue returns a setting by its YAML key.
func (c *Config) GetValue(key string) (string, error) {
	value, ok := c.ToMap()[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// ToMap returns every setting keyed by its YAML name.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "dest_dir,omitempty")
		yamlKey := strings.Split(yamlTag, ",")[0]

		fieldValue := settingsValue.Field(i)
		switch v := fieldValue.Interface().(type) {
		case time.Duration:
			result[yamlKey] = v.String()
		case string:
			result[yamlKey] = v
		case int:
			result[yamlKey] = strconv.Itoa(v)
		case bool:
			result[yamlKey] = strconv.FormatBool(v)
		default:
			result[yamlKey] = fmt.Sprintf("%v", v)
		}
	}

	return result
}
