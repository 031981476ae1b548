package command

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/internal/server/httpserver/handler"
)

func TestSystemCommand_Structure(t *testing.T) {
	cmd := SystemCommand()
	if cmd.Name != "system" {
		t.Errorf("Name = %q, want system", cmd.Name)
	}

	subs := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		subs[sub.Name] = true
	}
	for _, name := range []string{"health", "status", "snapshot"} {
		if !subs[name] {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestSystemHealth(t *testing.T) {
	srv := newTestServer(t)

	out, err := srv.run(t, "system", "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, srv.URL) || !strings.Contains(out, "ok") {
		t.Errorf("health output = %q", out)
	}

	if _, err := srv.run(t, "sys", "health", "--ready"); err != nil {
		t.Fatalf("health --ready: %v", err)
	}
}

func TestSystemHealth_Unreachable(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	var out syncBuffer
	err := runApp(t.Context(), &out, url, "system", "health")
	if err == nil || !strings.Contains(err.Error(), "server unhealthy") {
		t.Errorf("err = %v, want server unhealthy", err)
	}
}

func TestSystemStatus(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "a", "one", domain.StatusActive, t0)

	out, err := srv.run(t, "system", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"instance", testInstance, "todos", "generation"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}

	out, err = srv.run(t, "-o", "json", "system", "status")
	if err != nil {
		t.Fatalf("status json: %v", err)
	}
	var st handler.StatusResponse
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if st.Storage.Todos != 1 || st.Storage.Generation != 1 {
		t.Errorf("storage = %+v", st.Storage)
	}
}

func TestSystemSnapshot(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "a", "one", domain.StatusActive, t0)

	out, err := srv.run(t, "-o", "json", "system", "snapshot")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var info handler.SnapshotResponse
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Count != 1 {
		t.Errorf("count = %d, want 1", info.Count)
	}
	if _, err := os.Stat(info.Path); err != nil {
		t.Errorf("snapshot file: %v", err)
	}
}
