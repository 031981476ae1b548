package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/dew-go/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Run commands interactively; global flags carry over",
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	history := repl.NewHistory(repl.DefaultHistoryPath(), repl.DefaultHistorySize)
	if err := history.Load(); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "history: %v\n", err)
	}

	base := ParseGlobalFlags(c)
	exec := func(ctx context.Context, args []string) error {
		if len(args) > 0 && args[0] == "shell" {
			return errors.New("already in a shell")
		}
		app := App()
		app.Reader = c.App.Reader
		app.Writer = c.App.Writer
		app.ErrWriter = c.App.ErrWriter
		app.ExitErrHandler = func(*cli.Context, error) {}
		return app.RunContext(ctx, append(append([]string{c.App.Name}, globalArgs(base, args)...), args...))
	}

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(history))
	runErr := r.Run(c.Context)

	if err := history.Save(); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "history: %v\n", err)
	}
	return runErr
}

type baseFlag struct {
	names []string
	args  []string
}

// globalArgs turns resolved global flags back into arguments for a
// command run inside the shell. Flags the typed line sets itself, in
// either long or short form, are left out so the line wins. The
// settings file has already been applied, so it is not read again.
func globalArgs(f *GlobalFlags, typed []string) []string {
	flags := []baseFlag{
		{[]string{"config"}, []string{"--config", ""}},
		{[]string{"server", "s"}, []string{"--server", f.Server}},
		{[]string{"output", "o"}, []string{"--output", string(f.Output)}},
		{[]string{"timeout"}, []string{"--timeout", f.Timeout.String()}},
	}
	if f.Wide {
		flags = append(flags, baseFlag{[]string{"wide", "w"}, []string{"--wide"}})
	}
	if f.CAFile != "" {
		flags = append(flags, baseFlag{[]string{"ca-file"}, []string{"--ca-file", f.CAFile}})
	}
	if f.Insecure {
		flags = append(flags, baseFlag{[]string{"insecure", "k"}, []string{"--insecure"}})
	}

	var args []string
	for _, bf := range flags {
		if !setsFlag(typed, bf.names) {
			args = append(args, bf.args...)
		}
	}
	return args
}

// setsFlag reports whether args contain any of names as -name, --name
// or their =value forms.
func setsFlag(args []string, names []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if len(a) < 2 || a[0] != '-' {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if slices.Contains(names, name) {
			return true
		}
	}
	return false
}
