// Package config provides the configuration of tabclean: defaults, the
// .tabclean YAML file with per-source sections, TABCLEAN_* environment
// overrides, and the mapping to cleaning options and table sources.
package config
