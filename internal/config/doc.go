// Package config provides configuration structures and utilities for portcat.
// It defines scan and connect defaults, parses port lists and ranges, and
// loads the optional YAML configuration file.
package config
