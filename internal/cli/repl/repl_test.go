package repl

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(_ context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		calls int
	}{
		{"exit", "exit\nlist\n", 0},
		{"quit", "quit\n", 0},
		{"EOF", "", 0},
		{"EOF after command", "list", 1},
		{"empty lines", "\n\n  \nlist\nexit\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			var out bytes.Buffer
			r := New(rec.exec, WithIO(strings.NewReader(tt.input), &out))

			if err := r.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(rec.calls) != tt.calls {
				t.Errorf("calls = %v, want %d", rec.calls, tt.calls)
			}
		})
	}
}

func TestREPL_Run_Executes(t *testing.T) {
	rec := &recorder{}
	var out bytes.Buffer
	r := New(rec.exec, WithIO(strings.NewReader("add \"buy milk\"\ndone abc\n"), &out), WithPrompt("> "))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := [][]string{{"add", "buy milk"}, {"done", "abc"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
	if strings.Count(out.String(), "> ") != 3 {
		t.Errorf("expected three prompts, got %q", out.String())
	}
}

func TestREPL_Run_ErrorsContinue(t *testing.T) {
	rec := &recorder{err: errors.New("[DW-TODO-4040] todo not found")}
	var out bytes.Buffer
	r := New(rec.exec, WithIO(strings.NewReader("done x\ndone y\nadd 'open\n"), &out))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(rec.calls))
	}
	if strings.Count(out.String(), "Error: [DW-TODO-4040]") != 2 {
		t.Errorf("errors not printed: %q", out.String())
	}
	if !strings.Contains(out.String(), "unterminated") {
		t.Errorf("parse error not printed: %q", out.String())
	}
}

func TestREPL_Run_History(t *testing.T) {
	rec := &recorder{}
	var out bytes.Buffer
	r := New(rec.exec, WithIO(strings.NewReader("list\ngeneration\nhistory\n"), &out))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "   1  list\n") || !strings.Contains(out.String(), "   2  generation\n") {
		t.Errorf("history output = %q", out.String())
	}
}

func TestREPL_Run_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	r := New(rec.exec, WithIO(strings.NewReader("list\n"), &bytes.Buffer{}))
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("cancelled REPL ran %d commands", len(rec.calls))
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"list", []string{"list"}, false},
		{"  add   buy  milk ", []string{"add", "buy", "milk"}, false},
		{`add "buy milk"`, []string{"add", "buy milk"}, false},
		{`title abc 'it''s'`, []string{"title", "abc", "its"}, false},
		{`title abc "say \"hi\""`, []string{"title", "abc", `say "hi"`}, false},
		{`add a\ b`, []string{"add", "a b"}, false},
		{`add ""`, []string{"add", ""}, false},
		{`add "open`, nil, true},
		{`add \`, nil, true},
		{"", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
