// Package config defines the websnap CLI configuration.
//
// Configuration is layered: defaults, then the config file
// (~/.websnap/config.yaml by default), then WEBSNAP_* environment
// variables, then command-line flags.
package config
