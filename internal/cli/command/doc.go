// Package command defines the dew-cli commands on urfave/cli/v2.
//
//   - root.go: the App, global flags and client construction
//   - todo.go: list, add, done, undo, title, clear, generation, watch
//   - system.go: health, status and on-demand snapshots
//
// Results go to App.Writer through the output package so every command
// honours --output.
package command
