package orchestrator

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"ysconv/internal/config"
	"ysconv/internal/output"
)

func newTestOutput() (*output.Output, *bytes.Buffer) {
	var errBuf bytes.Buffer
	out := output.New(output.Config{
		Writer:    &bytes.Buffer{},
		ErrWriter: &errBuf,
	})
	return out, &errBuf
}

func runPipeline(t *testing.T, root string, dryRun bool) (*Summary, *bytes.Buffer) {
	t.Helper()
	out, errBuf := newTestOutput()
	summary, err := New(root, config.Default(), out, dryRun).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return summary, errBuf
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunRenamesAndRewrites(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "MyPlane.DAT"),
		"IDENTIFY MyPlane\nWPNSHAPE GUN STATIC OtherPlane.SRF\n")
	mustWrite(t, filepath.Join(root, "OtherPlane.SRF"), "SURF\n")

	summary, _ := runPipeline(t, root, false)

	if summary.Renamed != 2 {
		t.Errorf("renamed = %d, want 2", summary.Renamed)
	}
	if summary.Rewritten != 1 {
		t.Errorf("rewritten = %d, want 1", summary.Rewritten)
	}
	if summary.HasErrors() {
		t.Errorf("unexpected errors: %+v", summary)
	}

	data, err := os.ReadFile(filepath.Join(root, "myplane.dat"))
	if err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if !strings.Contains(string(data), "otherplane.srf") {
		t.Errorf("reference not rewritten: %q", data)
	}
	if _, err := os.Lstat(filepath.Join(root, "otherplane.srf")); err != nil {
		t.Errorf("referenced file not renamed: %v", err)
	}
}

func TestRunRenamesDirectoriesDeepestFirst(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "User", "Aircraft Pack", "MyPlane.DAT"), "IDENTIFY X\n")

	summary, _ := runPipeline(t, root, false)

	if summary.HasErrors() {
		t.Fatalf("unexpected errors: %+v", summary.Results)
	}
	if _, err := os.Lstat(filepath.Join(root, "user", "aircraft_pack", "myplane.dat")); err != nil {
		t.Fatalf("nested rename failed: %v", err)
	}
}

func TestRunIsolatesDecodeFailures(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Broken.lst"), []byte{0x83, 0x65, 0xff, 0x0a}, 0644); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(root, "Good.lst"), `Aircraft\Plane.dat`+"\n")

	summary, errBuf := runPipeline(t, root, false)

	if len(summary.DecodeFailures) != 1 {
		t.Fatalf("decode failures = %d, want 1", len(summary.DecodeFailures))
	}
	if summary.DecodeFailures[0].RelPath != "Broken.lst" {
		t.Errorf("wrong failure: %+v", summary.DecodeFailures[0])
	}
	if !strings.Contains(errBuf.String(), "Broken.lst") {
		t.Error("decode failure not reported to the user")
	}
	if !summary.HasErrors() {
		t.Error("decode failure must surface in HasErrors")
	}

	// The rest of the tree is still processed.
	data, err := os.ReadFile(filepath.Join(root, "good.lst"))
	if err != nil {
		t.Fatalf("good file was not processed: %v", err)
	}
	if string(data) != "aircraft/plane.dat\n" {
		t.Errorf("good file not rewritten: %q", data)
	}

	// The undecodable file keeps its original name and bytes: renaming it
	// would detach it from the report the user is acting on.
	raw, err := os.ReadFile(filepath.Join(root, "Broken.lst"))
	if err != nil {
		t.Fatalf("broken file missing: %v", err)
	}
	if len(raw) != 4 || raw[2] != 0xff {
		t.Error("broken file was modified")
	}
}

func TestRunKeepsUndecodablePathsResolvable(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "My Pack"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "My Pack", "Broken.lst"), []byte{0x83, 0x65, 0xff, 0x0a}, 0644); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(root, "My Pack", "Good.DAT"), "IDENTIFY x\n")

	summary, _ := runPipeline(t, root, false)

	if len(summary.DecodeFailures) != 1 {
		t.Fatalf("decode failures = %d, want 1", len(summary.DecodeFailures))
	}

	// The reported path must still resolve after the rename pass: the file
	// and every directory on the way to it keep their current names.
	failure := summary.DecodeFailures[0]
	if _, err := os.Lstat(failure.FullPath); err != nil {
		t.Errorf("reported path %s no longer resolves: %v", failure.FullPath, err)
	}
	if _, err := os.Lstat(filepath.Join(root, "My Pack", "Broken.lst")); err != nil {
		t.Errorf("undecodable file or its parent was renamed: %v", err)
	}

	// Decodable siblings inside the kept directory are still converted.
	if _, err := os.Lstat(filepath.Join(root, "My Pack", "good.dat")); err != nil {
		t.Errorf("sibling was not processed: %v", err)
	}
}

func TestRunContinuesPastUnreadableSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("chmod semantics differ on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission checks")
	}

	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "Good.DAT"), "IDENTIFY x\n")
	locked := filepath.Join(root, "Locked Pack")
	mustWrite(t, filepath.Join(locked, "hidden.dat"), "IDENTIFY y\n")
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	summary, errBuf := runPipeline(t, root, false)

	if !summary.HasErrors() {
		t.Error("unreadable subtree must surface in HasErrors")
	}
	if !strings.Contains(errBuf.String(), "Locked Pack") {
		t.Errorf("unreadable subtree not reported: %q", errBuf.String())
	}

	// The rest of the tree is still processed, and the unreadable
	// directory keeps its reported name.
	if _, err := os.Lstat(filepath.Join(root, "good.dat")); err != nil {
		t.Errorf("rest of tree was not processed: %v", err)
	}
	if _, err := os.Lstat(locked); err != nil {
		t.Errorf("unreadable directory was renamed: %v", err)
	}
}

func TestRunReportsCollisions(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "Plane.dat"), "IDENTIFY a\n")
	if err := os.WriteFile(filepath.Join(root, "PLANE.DAT"), []byte("IDENTIFY b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Skip("filesystem is case-insensitive")
	}

	summary, errBuf := runPipeline(t, root, false)

	if len(summary.Collisions) != 1 {
		t.Fatalf("collisions = %d, want 1", len(summary.Collisions))
	}
	if !summary.HasErrors() {
		t.Error("collision must surface in HasErrors")
	}
	if !strings.Contains(errBuf.String(), "collision") {
		t.Error("collision not reported to the user")
	}

	// Neither file renamed, neither content lost.
	a, err := os.ReadFile(filepath.Join(root, "Plane.dat"))
	if err != nil {
		t.Fatalf("Plane.dat gone: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(root, "PLANE.DAT"))
	if err != nil {
		t.Fatalf("PLANE.DAT gone: %v", err)
	}
	if string(a) == string(b) {
		t.Error("one collision member clobbered the other")
	}
}

func TestRunTwiceIsFixedPoint(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "Aircraft", "MyPlane.DAT"),
		"INSTPANL user\\Aircraft\\Panel.ist\n")
	mustWrite(t, filepath.Join(root, "Aircraft", "Air Pack.lst"),
		`Aircraft\MyPlane.dat Aircraft\MyPlane.dnm`+"\n")

	first, _ := runPipeline(t, root, false)
	if first.Clean() {
		t.Fatal("first run should change things")
	}

	before := snapshotTree(t, root)
	second, _ := runPipeline(t, root, false)
	if !second.Clean() {
		t.Errorf("second run changed things: renamed %d, rewrote %d", second.Renamed, second.Rewritten)
	}
	after := snapshotTree(t, root)

	if !snapshotsEqual(before, after) {
		t.Error("second run modified the tree")
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "MyPlane.DAT"), "WPNSHAPE GUN STATIC Other.SRF\n")

	before := snapshotTree(t, root)
	summary, _ := runPipeline(t, root, true)
	after := snapshotTree(t, root)

	if summary.Renamed != 1 || summary.Rewritten != 1 {
		t.Errorf("dry run must still report the plan: %+v", summary)
	}
	if !snapshotsEqual(before, after) {
		t.Error("dry run modified the tree")
	}
	if _, err := os.Lstat(filepath.Join(root, ".ysconv")); !os.IsNotExist(err) {
		t.Error("dry run created a journal")
	}
}
