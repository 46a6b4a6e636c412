// Package config resolves the loadtime CLI settings from flags, environment
// and an optional YAML file.
//
// # Sources
//
// In order of precedence:
//
//   - command-line flags bound into viper
//   - LOADTIME_* environment variables (LOADTIME_CACHE_DIR_NAME, ...)
//   - $HOME/.loadtime/config.yaml, or the file given with --config
//   - built-in defaults
//
// # Example
//
//	cache_dir_name: loadtime
//	show_percentage: true
//	update_interval: 500ms
//	progress: auto
//	log_level: warn
//	log_json: false
package config
