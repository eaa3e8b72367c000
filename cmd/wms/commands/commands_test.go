package commands_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"wms/cmd/wms/commands"
	"wms/internal/database"
	"wms/internal/server"
)

type cli struct {
	t    *testing.T
	url  string
	home string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	repo := database.NewMemoryRepository()
	if err := database.SeedDrivers(context.Background(), repo, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	if err := database.SeedBins(context.Background(), repo, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(server.NewRouter(server.Deps{Repo: repo, Secret: "cli-secret"}))
	t.Cleanup(srv.Close)
	t.Setenv("WMS_LOG_LEVEL", "error")
	return &cli{t: t, url: srv.URL + "/", home: t.TempDir()}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--home", c.home, "--server", c.url}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginBinsLogout(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(database.DemoPassword+"\n", "login", "--email", database.DemoEmail)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if strings.TrimSpace(out) != "Bonjour Demo!" {
		t.Fatalf("login output = %q", out)
	}

	out, err = c.run("", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, database.DemoEmail) || !strings.Contains(out, "token:   valid") {
		t.Fatalf("whoami = %q", out)
	}

	out, err = c.run("", "bins", "list", "--critical")
	if err != nil {
		t.Fatal(err)
	}
	// Seed data has three bins at 80% or more.
	if lines := strings.Count(strings.TrimSpace(out), "\n"); lines != 3 {
		t.Fatalf("critical bins:\n%s", out)
	}

	out, err = c.run("", "bins", "show", "1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Fill:     45% (Normal)") {
		t.Fatalf("show = %q", out)
	}

	if _, err := c.run("", "logout"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.run("", "whoami"); err == nil || err.Error() != "not logged in" {
		t.Fatalf("whoami after logout: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "login", "--email", database.DemoEmail, "--password", "Nope@20244")
	if err == nil || err.Error() != "Invalid email or password" {
		t.Fatalf("err = %v", err)
	}
}

func TestLoginRejectsBadInputLocally(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "login", "--email", "not-an-email", "--password", "whatever1")
	if err == nil || err.Error() != "Please enter a valid email address" {
		t.Fatalf("err = %v", err)
	}
}

func TestProfileUpdate(t *testing.T) {
	c := newCLI(t)
	if _, err := c.run("", "login", "-e", database.DemoEmail, "-p", database.DemoPassword); err != nil {
		t.Fatal(err)
	}

	out, err := c.run("", "profile", "update", "--first-name", "Camille")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Profile updated successfully!") || !strings.Contains(out, "First name: Camille") {
		t.Fatalf("update = %q", out)
	}

	out, err = c.run("", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Camille Driver") {
		t.Fatalf("whoami = %q", out)
	}
}

func TestNavigate(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "navigate", "--from", "0,0", "--to", "1,0")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Bearing:  0.0° (N)") || !strings.Contains(out, "Distance: 111.19 km") {
		t.Fatalf("navigate = %q", out)
	}

	if _, err := c.run("", "navigate", "--from", "0,0"); err == nil {
		t.Fatal("navigate without destination succeeded")
	}
}
