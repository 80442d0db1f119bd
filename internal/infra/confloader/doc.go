// Package confloader loads websnap configuration.
//
// It layers sources through koanf with the priority (highest first):
//
//  1. Command-line flags
//  2. Environment variables (WEBSNAP_*)
//  3. Configuration file (YAML)
//  4. Default values
//
// A watcher built on fsnotify reloads configuration when the file
// changes on disk.
package confloader
