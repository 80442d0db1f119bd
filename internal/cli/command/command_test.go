package command

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veldtlabs/websnap/internal/runtime"
	"github.com/veldtlabs/websnap/internal/snapshot"
)

type scriptedExecutor struct {
	values map[string]runtime.Value
}

func (e scriptedExecutor) RunScript(source string) (runtime.Value, error) {
	v, ok := e.values[source]
	if !ok {
		return runtime.Value{}, fmt.Errorf("unresolved binding %q", source)
	}
	return v, nil
}

func (e scriptedExecutor) CompileFunction(*runtime.Function) error {
	return nil
}

// snapshotFile writes a small valid snapshot to dir and returns its path.
func snapshotFile(t *testing.T, dir string) string {
	t.Helper()

	heap := runtime.NewHeap()
	exec := scriptedExecutor{values: map[string]runtime.Value{
		"answer": runtime.Int(42),
		"label":  runtime.Str(heap.NewString("hello")),
	}}
	buf, err := snapshot.NewCodec(heap, exec).Encode([]string{"answer", "label"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	path := filepath.Join(dir, "fixture.snap")
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// runApp executes the CLI with args and returns captured stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &buf

	err := app.Run(append([]string{"websnap"}, args...))
	return buf.String(), err
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	path := snapshotFile(t, dir)

	out, err := runApp(t, "--output", "json", "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, `"answer"`) || !strings.Contains(out, `"integer"`) {
		t.Errorf("inspect output missing exports: %q", out)
	}
}

func TestInspectCommand_MissingArg(t *testing.T) {
	if _, err := runApp(t, "inspect"); err == nil {
		t.Error("inspect without file should fail")
	}
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	path := snapshotFile(t, dir)

	out, err := runApp(t, "verify", path)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, "OK") {
		t.Errorf("verify output = %q, want OK", out)
	}
}

func TestVerifyCommand_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.snap")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := runApp(t, "verify", path); err == nil {
		t.Error("verify of corrupt file should fail")
	}
}

func TestStoreImportListExport(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "store")
	path := snapshotFile(t, dir)

	out, err := runApp(t, "--store-dir", storeDir, "store", "import", path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported") {
		t.Errorf("import output = %q", out)
	}

	out, err = runApp(t, "--store-dir", storeDir, "--output", "json", "store", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"answer"`) {
		t.Errorf("list output missing export names: %q", out)
	}

	// Pull the ID out of the listing.
	idx := strings.Index(out, `"id": "`)
	if idx < 0 {
		t.Fatalf("no id in listing: %q", out)
	}
	id := out[idx+len(`"id": "`):]
	id = id[:strings.Index(id, `"`)]

	exported := filepath.Join(dir, "exported.snap")
	if _, err := runApp(t, "--store-dir", storeDir, "store", "export", id, exported); err != nil {
		t.Fatalf("export: %v", err)
	}

	original, _ := os.ReadFile(path)
	roundTripped, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(original, roundTripped) {
		t.Error("exported payload differs from imported file")
	}
}

func TestStoreImport_RejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.snap")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := runApp(t, "--store-dir", filepath.Join(dir, "store"), "store", "import", path); err == nil {
		t.Error("import of garbage should fail")
	}
}

func TestStoreDelete(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "store")
	path := snapshotFile(t, dir)

	if _, err := runApp(t, "--store-dir", storeDir, "store", "import", path); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, err := runApp(t, "--store-dir", storeDir, "--output", "json", "store", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	idx := strings.Index(out, `"id": "`)
	if idx < 0 {
		t.Fatalf("no id in listing: %q", out)
	}
	id := out[idx+len(`"id": "`):]
	id = id[:strings.Index(id, `"`)]

	out, err = runApp(t, "--store-dir", storeDir, "store", "delete", "--force", id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "deleted") {
		t.Errorf("delete output = %q", out)
	}

	if _, err := runApp(t, "--store-dir", storeDir, "store", "info", id); err == nil {
		t.Error("info after delete should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(t, "--output", "json", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, `"version"`) {
		t.Errorf("version output = %q", out)
	}
}
