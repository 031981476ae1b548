package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/dew-go/internal/cli/output"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server health and administration",
		Subcommands: []*cli.Command{
			{
				Name:  "health",
				Usage: "Check server health",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "ready",
						Usage: "Check readiness instead of liveness",
					},
				},
				Action: systemHealth,
			},
			{
				Name:   "status",
				Usage:  "Show server status summary",
				Action: systemStatus,
			},
			{
				Name:   "snapshot",
				Usage:  "Write a snapshot now",
				Action: systemSnapshot,
			},
		},
	}
}

func systemHealth(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	result, err := client.Health(c.Context, c.Bool("ready"))
	if err != nil {
		return fmt.Errorf("server unhealthy: %w", err)
	}

	return render(c, result, func(bool) *output.Table {
		t := &output.Table{Headers: []string{"TARGET", "STATUS"}}
		t.AddRow(client.BaseURL(), result.Status)
		return t
	})
}

func systemStatus(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	st, err := client.Status(c.Context)
	if err != nil {
		return err
	}

	return render(c, st, func(bool) *output.Table {
		t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
		t.AddRow("version", st.Build.Version)
		t.AddRow("commit", st.Build.Commit)
		t.AddRow("instance", st.InstanceID)
		t.AddRow("uptime", st.Uptime)
		t.AddRow("todos", fmt.Sprint(st.Storage.Todos))
		t.AddRow("generation", fmt.Sprint(st.Storage.Generation))
		t.AddRow("snapshot path", st.Storage.SnapshotPath)
		t.AddRow("snapshot interval", st.Storage.SnapshotInterval)
		return t
	})
}

func systemSnapshot(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	info, err := client.Snapshot(c.Context)
	if err != nil {
		return err
	}
	return render(c, info, nil)
}
