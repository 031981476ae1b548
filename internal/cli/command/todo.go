package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/dew-go/internal/cli/connection"
	"github.com/yndnr/dew-go/internal/cli/output"
	"github.com/yndnr/dew-go/internal/core/domain"
)

// shortIDLength is how much of an id the narrow table shows.
const shortIDLength = 8

// ListCommand returns the list command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List todos, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show todos with this status: active or completed",
			},
		},
		Action: todoList,
	}
}

// AddCommand returns the add command.
func AddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a todo",
		ArgsUsage: "TITLE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Use this id instead of a random one; an existing todo is replaced",
			},
		},
		Action: todoAdd,
	}
}

// DoneCommand returns the done command.
func DoneCommand() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark a todo completed",
		ArgsUsage: "ID",
		Action:    todoSetStatus(domain.StatusCompleted),
	}
}

// UndoCommand returns the undo command.
func UndoCommand() *cli.Command {
	return &cli.Command{
		Name:      "undo",
		Usage:     "Mark a todo active again",
		ArgsUsage: "ID",
		Action:    todoSetStatus(domain.StatusActive),
	}
}

// ToggleCommand returns the toggle command.
func ToggleCommand() *cli.Command {
	return &cli.Command{
		Name:      "toggle",
		Usage:     "Flip a todo between active and completed",
		ArgsUsage: "ID",
		Action:    todoToggle,
	}
}

// TitleCommand returns the title command.
func TitleCommand() *cli.Command {
	return &cli.Command{
		Name:      "title",
		Aliases:   []string{"rename"},
		Usage:     "Change the title of a todo",
		ArgsUsage: "ID TITLE",
		Action:    todoSetTitle,
	}
}

// ClearCommand returns the clear command.
func ClearCommand() *cli.Command {
	return &cli.Command{
		Name:   "clear",
		Usage:  "Delete all completed todos",
		Action: todoClear,
	}
}

// GenerationCommand returns the generation command.
func GenerationCommand() *cli.Command {
	return &cli.Command{
		Name:    "generation",
		Aliases: []string{"gen"},
		Usage:   "Print the server's change counter",
		Action:  todoGeneration,
	}
}

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll the server and reprint the list whenever it changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Polling interval",
				Value:   5 * time.Second,
			},
		},
		Action: todoWatch,
	}
}

func todoList(c *cli.Context) error {
	var filter domain.Status
	if s := c.String("status"); s != "" {
		st, err := parseStatusFlag(s)
		if err != nil {
			return err
		}
		filter = st
	}

	client, err := NewClient(c)
	if err != nil {
		return err
	}

	todos, err := client.ListTodos(c.Context)
	if err != nil {
		return err
	}
	if filter != "" {
		kept := todos[:0]
		for _, t := range todos {
			if t.Status == filter {
				kept = append(kept, t)
			}
		}
		todos = kept
	}
	return renderTodos(c, todos)
}

func todoAdd(c *cli.Context) error {
	if err := requireArgs(c, 1, "TITLE"); err != nil {
		return err
	}

	client, err := NewClient(c)
	if err != nil {
		return err
	}

	todo := domain.NewTodo(strings.Join(c.Args().Slice(), " "))
	if id := c.String("id"); id != "" {
		todo.ID = id
	}

	created, err := client.CreateTodo(c.Context, todo)
	if err != nil {
		return err
	}
	return renderTodos(c, []*domain.Todo{created})
}

func todoSetStatus(status domain.Status) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := requireArgs(c, 1, "ID"); err != nil {
			return err
		}

		client, err := NewClient(c)
		if err != nil {
			return err
		}

		todo, err := withIDPrefix(c.Context, client, c.Args().First(), func(id string) (*domain.Todo, error) {
			return client.SetStatus(c.Context, id, status)
		})
		if err != nil {
			return err
		}
		return renderTodos(c, []*domain.Todo{todo})
	}
}

func todoToggle(c *cli.Context) error {
	if err := requireArgs(c, 1, "ID"); err != nil {
		return err
	}

	client, err := NewClient(c)
	if err != nil {
		return err
	}

	todos, err := client.ListTodos(c.Context)
	if err != nil {
		return err
	}
	current, err := findTodo(todos, c.Args().First())
	if err != nil {
		return err
	}

	todo, err := client.SetStatus(c.Context, current.ID, current.Status.Toggle())
	if err != nil {
		return err
	}
	return renderTodos(c, []*domain.Todo{todo})
}

func todoSetTitle(c *cli.Context) error {
	if err := requireArgs(c, 2, "ID TITLE"); err != nil {
		return err
	}

	client, err := NewClient(c)
	if err != nil {
		return err
	}

	args := c.Args().Slice()
	title := strings.Join(args[1:], " ")
	todo, err := withIDPrefix(c.Context, client, args[0], func(id string) (*domain.Todo, error) {
		return client.SetTitle(c.Context, id, title)
	})
	if err != nil {
		return err
	}
	return renderTodos(c, []*domain.Todo{todo})
}

func todoClear(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	n, err := client.DeleteCompleted(c.Context)
	if err != nil {
		return err
	}

	result := map[string]int{"removed": n}
	return render(c, result, func(bool) *output.Table {
		t := &output.Table{Headers: []string{"REMOVED"}}
		t.AddRow(fmt.Sprint(n))
		return t
	})
}

func todoGeneration(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	g, err := client.Generation(c.Context)
	if err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if flags.Output == output.FormatTable {
		if flags.Wide {
			fmt.Fprintf(c.App.Writer, "%d\t%s\n", g.Generation, g.Instance)
		} else {
			fmt.Fprintln(c.App.Writer, g.Generation)
		}
		return nil
	}
	return render(c, g, nil)
}

// todoWatch polls the generation and reprints the list when it moves.
// A different instance id means the server restarted and its counter
// began again at zero, so that also triggers a reprint.
func todoWatch(c *cli.Context) error {
	interval := c.Duration("interval")
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	client, err := NewClient(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last    connection.Generation
		printed bool
	)
	for {
		changed, err := pollOnce(ctx, c, client, last, printed)
		switch {
		case err == nil && changed != nil:
			last, printed = *changed, true
		case err != nil && ctx.Err() == nil:
			fmt.Fprintf(c.App.ErrWriter, "watch: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// pollOnce fetches the generation and, if it differs from last, reprints
// the list. It returns the new generation when it printed.
func pollOnce(ctx context.Context, c *cli.Context, client *connection.Client, last connection.Generation, printed bool) (*connection.Generation, error) {
	g, err := client.Generation(ctx)
	if err != nil {
		return nil, err
	}
	if printed && g == last {
		return nil, nil
	}

	todos, err := client.ListTodos(ctx)
	if err != nil {
		return nil, err
	}

	if ParseGlobalFlags(c).Output == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "# generation %d  %s\n", g.Generation, time.Now().Format(time.TimeOnly))
	}
	if err := renderTodos(c, todos); err != nil {
		return nil, err
	}
	return &g, nil
}

func renderTodos(c *cli.Context, todos []*domain.Todo) error {
	if todos == nil {
		todos = []*domain.Todo{}
	}
	return render(c, todos, func(wide bool) *output.Table {
		return todosTable(todos, wide)
	})
}

func todosTable(todos []*domain.Todo, wide bool) *output.Table {
	t := &output.Table{Headers: []string{"ID", "DONE", "TITLE", "CREATED"}}
	for _, todo := range todos {
		id := todo.ID
		if !wide && len(id) > shortIDLength {
			id = id[:shortIDLength]
		}
		done := "[ ]"
		if todo.IsCompleted() {
			done = "[x]"
		}
		t.AddRow(id, done, todo.Title, todo.Created.Local().Format(output.TimeLayout))
	}
	return t
}

// withIDPrefix runs fn with id. If the server does not know id, it is
// retried as a prefix of exactly one stored id, so the short ids printed
// by list can be typed back in.
func withIDPrefix(ctx context.Context, client *connection.Client, id string, fn func(id string) (*domain.Todo, error)) (*domain.Todo, error) {
	todo, err := fn(id)
	if err == nil || !connection.IsNotFound(err) {
		return todo, err
	}

	todos, listErr := client.ListTodos(ctx)
	if listErr != nil {
		return nil, err
	}
	matches := matchPrefix(todos, id)
	switch len(matches) {
	case 0:
		return nil, err
	case 1:
		return fn(matches[0].ID)
	default:
		return nil, ambiguousPrefix(id, len(matches))
	}
}

// findTodo picks the todo with the given id, or the only one it prefixes.
func findTodo(todos []*domain.Todo, id string) (*domain.Todo, error) {
	for _, t := range todos {
		if t.ID == id {
			return t, nil
		}
	}
	matches := matchPrefix(todos, id)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("todo %q not found", id)
	case 1:
		return matches[0], nil
	default:
		return nil, ambiguousPrefix(id, len(matches))
	}
}

func matchPrefix(todos []*domain.Todo, prefix string) []*domain.Todo {
	var matches []*domain.Todo
	for _, t := range todos {
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t)
		}
	}
	return matches
}

func ambiguousPrefix(id string, n int) error {
	return fmt.Errorf("id prefix %q is ambiguous: matches %d todos", id, n)
}

// parseStatusFlag accepts the wire names in any case.
func parseStatusFlag(s string) (domain.Status, error) {
	switch strings.ToLower(s) {
	case "active":
		return domain.StatusActive, nil
	case "completed", "done":
		return domain.StatusCompleted, nil
	default:
		return "", fmt.Errorf("unknown status %q (want active or completed)", s)
	}
}
