package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/dew-go/internal/cli/config"
	"github.com/yndnr/dew-go/internal/cli/connection"
	"github.com/yndnr/dew-go/internal/cli/output"
	"github.com/yndnr/dew-go/internal/infra/buildinfo"
)

// DefaultServer is the server address used when neither --server nor
// DEW_SERVER is set.
const DefaultServer = "http://127.0.0.1:7890"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "dew-cli",
		Usage:                "Dew todo command-line client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			ListCommand(),
			AddCommand(),
			DoneCommand(),
			UndoCommand(),
			ToggleCommand(),
			TitleCommand(),
			ClearCommand(),
			GenerationCommand(),
			WatchCommand(),
			SystemCommand(),
			ShellCommand(),
		},
		Before: func(c *cli.Context) error {
			if err := applyConfigFile(c); err != nil {
				return err
			}
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Settings file with flag defaults",
			EnvVars: []string{"DEW_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Dew server URL (http, https or unix:///path/to/socket)",
			EnvVars: []string{"DEW_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			EnvVars: []string{"DEW_OUTPUT"},
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show full ids and extra columns",
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file with extra CA certificates for https servers",
			EnvVars: []string{"DEW_CA_FILE"},
		},
		&cli.BoolFlag{
			Name:    "insecure",
			Aliases: []string{"k"},
			Usage:   "Skip TLS certificate verification",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// applyConfigFile fills global flags that were not given on the command
// line or in the environment from the settings file.
func applyConfigFile(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	for name, value := range cfg.Values() {
		if c.IsSet(name) {
			continue
		}
		if err := c.Set(name, value); err != nil {
			return fmt.Errorf("%s: invalid %s %q: %w", c.String("config"), name, value, err)
		}
	}
	return nil
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server   string
	Output   output.Format
	Wide     bool
	CAFile   string
	Insecure bool
	Timeout  time.Duration
}

// ParseGlobalFlags extracts global flags from context.
// The output format has already been validated by App.Before.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		Server:   c.String("server"),
		Output:   format,
		Wide:     c.Bool("wide"),
		CAFile:   c.String("ca-file"),
		Insecure: c.Bool("insecure"),
		Timeout:  c.Duration("timeout"),
	}
}

// NewClient builds an API client from the global flags.
func NewClient(c *cli.Context) (*connection.Client, error) {
	flags := ParseGlobalFlags(c)
	httpClient, err := connection.NewHTTPClient(flags.Server, connection.Options{
		CAFile:   flags.CAFile,
		Insecure: flags.Insecure,
		Timeout:  flags.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return connection.NewClient(httpClient), nil
}

// render writes data in the selected format. For table output, table
// builds a custom layout; nil falls back to the generic formatter.
func render(c *cli.Context, data any, table func(wide bool) *output.Table) error {
	flags := ParseGlobalFlags(c)
	if flags.Output == output.FormatTable && table != nil {
		return table(flags.Wide).Render(c.App.Writer)
	}
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

// requireArgs checks the positional argument count.
func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() < n {
		return fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, usage)
	}
	return nil
}
