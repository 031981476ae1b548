// Package repl runs dew-cli commands interactively.
//
// Each input line is split shell-style and handed to an Executor, which
// in practice re-enters the urfave/cli App. History is kept across
// sessions in a plain text file.
package repl
