// Package confloader provides configuration loading mechanism.
//
// It is a thin layer over koanf that merges, in increasing priority:
//
//  1. Default values (the target struct as passed in)
//  2. Configuration file (YAML)
//  3. Environment variables (DEW_ prefix)
//
// Watcher reloads on file changes via fsnotify so selected settings,
// such as the log level, can change without a restart.
package confloader
