package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"contact-picker/internal/logger"
	"contact-picker/internal/model"
	"contact-picker/internal/store"

	"github.com/spf13/cobra"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(append([]string{"--log-file", filepath.Join(t.TempDir(), "cli.log")}, args...))

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate points config at a temp dir and clears env the flags read defaults from.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONTACTPICKER_CONFIG_DIR", dir)
	for _, k := range []string{"CONTACTPICKER_CONTACTS", "CONTACTPICKER_FORMAT", "CONTACTPICKER_STRICT", "CONTACTPICKER_REINSERT", "CONTACTPICKER_PRETTY", "CONTACTPICKER_DEBUG", "CONTACTPICKER_LOG_FILE"} {
		t.Setenv(k, "")
	}
	t.Cleanup(logger.Close)
	return dir
}

func writeContacts(t *testing.T, cs []model.Contact) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.json")
	if err := store.WriteContactsJSON(path, cs); err != nil {
		t.Fatalf("write contacts: %v", err)
	}
	return path
}

func sampleContacts() []model.Contact {
	return []model.Contact{
		{ID: 1, Name: "Ann", Email: "ann@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com", AvatarURL: "https://example.com/bob.png"},
		{ID: 3, Name: "Dan", Email: "dan@example.com"},
	}
}

type listEnvelope struct {
	Data []model.Contact `json:"data"`
	Meta map[string]any  `json:"meta"`
}

func mustList(t *testing.T, args ...string) listEnvelope {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("contactpicker %v: %v\nstderr:\n%s", args, err, stderr)
	}
	var env listEnvelope
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal: %v\nstdout:\n%s", err, stdout)
	}
	return env
}

func TestContactsList_DefaultsToSeed(t *testing.T) {
	isolate(t)

	env := mustList(t, "contacts", "list")
	if len(env.Data) != 12 {
		t.Fatalf("expected 12 seed contacts, got %d", len(env.Data))
	}
	if env.Meta["source"] != "seed" {
		t.Fatalf("expected seed source, got %v", env.Meta["source"])
	}
}

func TestContactsFilter(t *testing.T) {
	isolate(t)
	path := writeContacts(t, sampleContacts())

	env := mustList(t, "--contacts", path, "contacts", "filter", "AN")
	if got := model.ContactIDs(env.Data); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Fatalf("expected Ann and Dan, got %v", got)
	}

	stdout, _, err := runCLI(t, []string{"--contacts", path, "--format", "text", "contacts", "filter", "bo"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(stdout)) != "2\tBob\tbob@example.com" {
		t.Fatalf("unexpected text output %q", stdout)
	}
}

func TestContactsShow(t *testing.T) {
	isolate(t)
	path := writeContacts(t, sampleContacts())

	stdout, _, err := runCLI(t, []string{"--contacts", path, "--format", "text", "contacts", "show", "2"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"name:   Bob", "avatar: https://example.com/bob.png"} {
		if !strings.Contains(string(stdout), want) {
			t.Fatalf("expected %q in:\n%s", want, stdout)
		}
	}

	stdout, _, err = runCLI(t, []string{"--contacts", path, "--format", "edn", "contacts", "show", "1"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(stdout), `:name "Ann"`) {
		t.Fatalf("expected edn output, got %s", stdout)
	}

	_, stderr, err := runCLI(t, []string{"--contacts", path, "contacts", "show", "99"})
	var nf store.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "99" {
		t.Fatalf("expected not found error, got %v", err)
	}
	if !strings.Contains(string(stderr), "99") {
		t.Fatalf("expected error on stderr, got %q", stderr)
	}

	if _, _, err := runCLI(t, []string{"--contacts", path, "contacts", "show", "abc"}); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestContactsImport_IntoSQLiteAndUse(t *testing.T) {
	cfgDir := isolate(t)
	src := writeContacts(t, sampleContacts())
	db := filepath.Join(t.TempDir(), "team.db")

	stdout, stderr, err := runCLI(t, []string{"contacts", "import", src, "--into", db, "--use"})
	if err != nil {
		t.Fatalf("import: %v\nstderr:\n%s", err, stderr)
	}
	var res struct {
		Data store.ImportResult `json:"data"`
	}
	if err := json.Unmarshal(stdout, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Data.Imported != 3 {
		t.Fatalf("expected 3 imported, got %+v", res.Data)
	}

	b, err := os.ReadFile(filepath.Join(cfgDir, "config.json"))
	if err != nil || !strings.Contains(string(b), "team.db") {
		t.Fatalf("expected config to point at the db, got %s (err=%v)", b, err)
	}

	env := mustList(t, "contacts", "list")
	if got := model.ContactIDs(env.Data); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("expected directory order from sqlite, got %v", got)
	}
	if env.Meta["source"] != db {
		t.Fatalf("expected source %s, got %v", db, env.Meta["source"])
	}
}

func TestContactsExport_RoundTripsThroughSQLite(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "team.db")
	out := filepath.Join(dir, "team.json")

	if _, stderr, err := runCLI(t, []string{"contacts", "import", writeContacts(t, sampleContacts()), "--into", db}); err != nil {
		t.Fatalf("import: %v\nstderr:\n%s", err, stderr)
	}
	if _, stderr, err := runCLI(t, []string{"--contacts", db, "contacts", "export", out}); err != nil {
		t.Fatalf("export: %v\nstderr:\n%s", err, stderr)
	}

	got, err := store.LoadContactsJSON(out)
	if err != nil {
		t.Fatalf("load export: %v", err)
	}
	if !reflect.DeepEqual(got, sampleContacts()) {
		t.Fatalf("export mismatch:\n got %#v\nwant %#v", got, sampleContacts())
	}

	if _, _, err := runCLI(t, []string{"contacts", "export", filepath.Join(dir, "team.db")}); err == nil {
		t.Fatalf("expected non-json export target to fail")
	}
}

func TestContactsImport_RequiresSQLiteTarget(t *testing.T) {
	isolate(t)
	src := writeContacts(t, sampleContacts())

	if _, _, err := runCLI(t, []string{"contacts", "import", src}); err == nil {
		t.Fatalf("expected missing --into error")
	}
	if _, _, err := runCLI(t, []string{"contacts", "import", src, "--into", filepath.Join(t.TempDir(), "x.json")}); err == nil {
		t.Fatalf("expected non-sqlite target error")
	}
}

func TestContactsPathPrecedence(t *testing.T) {
	isolate(t)
	fromConfig := writeContacts(t, sampleContacts()[:1])
	fromEnv := writeContacts(t, sampleContacts()[:2])
	fromFlag := writeContacts(t, sampleContacts())

	if _, _, err := runCLI(t, []string{"config", "set", "contactsPath", fromConfig}); err != nil {
		t.Fatal(err)
	}
	if n := len(mustList(t, "contacts", "list").Data); n != 1 {
		t.Fatalf("config: expected 1 contact, got %d", n)
	}

	t.Setenv("CONTACTPICKER_CONTACTS", fromEnv)
	if n := len(mustList(t, "contacts", "list").Data); n != 2 {
		t.Fatalf("env: expected 2 contacts, got %d", n)
	}
	if n := len(mustList(t, "--contacts", fromFlag, "contacts", "list").Data); n != 3 {
		t.Fatalf("flag: expected 3 contacts, got %d", n)
	}
}

func TestDuplicateIDsAreRejected(t *testing.T) {
	isolate(t)
	// WriteContactsJSON refuses duplicates, so the fixture is written raw.
	path := filepath.Join(t.TempDir(), "dupes.json")
	raw := `[{"id":1,"name":"Ann"},{"id":2,"name":"Bob"},{"id":1,"name":"Annie"}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, _, err := runCLI(t, []string{"--contacts", path, "contacts", "list"})
	var dup store.DuplicateIDError
	if !errors.As(err, &dup) || !reflect.DeepEqual(dup.IDs, []int{1}) {
		t.Fatalf("expected duplicate id error for 1, got %v", err)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	isolate(t)

	if _, _, err := runCLI(t, []string{"config", "set", "reinsert", "sideways"}); err == nil {
		t.Fatalf("expected invalid reinsert to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "set", "nope", "x"}); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
	for _, kv := range [][2]string{{"reinsert", "name"}, {"strict", "true"}, {"web.sessionTtl", "10m"}} {
		if _, stderr, err := runCLI(t, []string{"config", "set", kv[0], kv[1]}); err != nil {
			t.Fatalf("config set %v: %v\n%s", kv, err, stderr)
		}
	}

	show := func(args ...string) map[string]any {
		t.Helper()
		stdout, _, err := runCLI(t, append(args, "config", "show"))
		if err != nil {
			t.Fatal(err)
		}
		var env struct {
			Meta struct {
				Effective map[string]any `json:"effective"`
			} `json:"meta"`
		}
		if err := json.Unmarshal(stdout, &env); err != nil {
			t.Fatalf("unmarshal: %v\n%s", err, stdout)
		}
		return env.Meta.Effective
	}

	eff := show()
	if eff["reinsert"] != "name" || eff["strict"] != true || eff["sessionTtl"] != "10m0s" {
		t.Fatalf("unexpected effective config: %v", eff)
	}
	eff = show("--reinsert", "append", "--strict=false")
	if eff["reinsert"] != "append" || eff["strict"] != false {
		t.Fatalf("expected flags to win over config: %v", eff)
	}
	if eff["placeholder"] != store.DefaultPlaceholder {
		t.Fatalf("expected default placeholder, got %v", eff["placeholder"])
	}
}

func TestInvalidReinsertFlag(t *testing.T) {
	isolate(t)

	if _, _, err := runCLI(t, []string{"--reinsert", "sideways", "contacts", "filter", "a"}); err == nil {
		t.Fatalf("expected invalid --reinsert to fail")
	}
}

func TestDocs(t *testing.T) {
	isolate(t)

	stdout, _, err := runCLI(t, []string{"docs"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(stdout), `"gestures"`) {
		t.Fatalf("expected topic list, got %s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"docs", "gestures", "--raw"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(stdout), "# ") {
		t.Fatalf("expected raw markdown, got %q", stdout)
	}

	_, _, err = runCLI(t, []string{"docs", "nope"})
	var ute unknownTopicError
	if !errors.As(err, &ute) {
		t.Fatalf("expected unknown topic error, got %v", err)
	}
}

func TestChildArgs(t *testing.T) {
	isolate(t)

	app := &App{ContactsPath: "/tmp/team.json", Reinsert: "name", Strict: true, LogFile: "/tmp/cp.log", Debug: true}
	cmd := &cobra.Command{}
	cmd.Flags().Bool("strict", false, "")
	_ = cmd.Flags().Set("strict", "true")

	got := app.childArgs(cmd)
	want := []string{"--contacts", "/tmp/team.json", "--reinsert", "name", "--strict=true", "--log-file", "/tmp/cp.log", "--debug"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("childArgs=%v want %v", got, want)
	}

	if got := (&App{}).childArgs(&cobra.Command{}); len(got) != 0 {
		t.Fatalf("expected no args, got %v", got)
	}
}
