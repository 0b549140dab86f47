package e2e

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	externalsBin string
	projRoot     string
	testEnv      *E2ETestEnvironment
)

func TestMain(m *testing.M) {
	var err error

	// Build the CLI once for all tests
	tmpBinDir, err := os.MkdirTemp("", "externals-bin")
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := os.RemoveAll(tmpBinDir); err != nil {
			panic(err)
		}
	}()

	externalsBin = filepath.Join(tmpBinDir, "externals")

	// Determine project root
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot determine current file path")
	}
	projRoot = filepath.Join(filepath.Dir(thisFile), "..", "..")

	cmd := exec.Command("go", "build", "-o", externalsBin, "./cmd/externals")
	cmd.Dir = projRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic(string(out))
	}

	testEnv, err = NewE2ETestEnvironment(externalsBin)
	if err != nil {
		panic(err)
	}
	defer testEnv.Close()

	// Run tests
	code := m.Run()
	os.Exit(code)
}

func TestE2ESeedAndCat(t *testing.T) {
	textFile := NewTestFile("/simple-text").
		WithTextContent("Hello, externals! This is a simple test file.").
		Build()

	ws := testEnv.NewWorkspace(t, []*TestFileSpec{textFile})
	ws.Seed(t, `[{
		"path": "test.txt",
		"source": {"type": "http", "url": "%s/simple-text"}
	}]`)

	data, err := os.ReadFile(filepath.Join(ws.Dir, "test.txt"))
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	expected := "Hello, externals! This is a simple test file."
	if string(data) != expected {
		t.Fatalf("content mismatch:\nexpected: %q\ngot:      %q", expected, string(data))
	}

	out, _, err := ws.Run("", "cat", filepath.Join(ws.Dir, "test.txt"))
	if err != nil {
		t.Fatalf("cat failed: %v", err)
	}
	if out != expected {
		t.Fatalf("cat mismatch: got %q", out)
	}
}

func TestE2EMultipleFiles(t *testing.T) {
	files := []*TestFileSpec{
		NewTestFile("/text-content").
			WithTextContent("Text file content for testing.").
			Build(),
		NewTestFile("/binary-content").
			WithBinaryContent(512). // 512 bytes of binary data
			Build(),
	}

	ws := testEnv.NewWorkspace(t, files)
	ws.Seed(t, `
- path: docs/text.txt
  source: {type: http, url: "%[1]s/text-content"}
- path: assets/binary.bin
  source: {type: http, url: "%[1]s/binary-content"}
- path: assets/inline.bin
  source: {type: inline, content: AAECAw==, base64: true}
`)

	textData, err := os.ReadFile(filepath.Join(ws.Dir, "docs", "text.txt"))
	if err != nil {
		t.Fatalf("failed to read text file: %v", err)
	}
	if string(textData) != "Text file content for testing." {
		t.Fatalf("text content mismatch: got %q", string(textData))
	}

	binaryData, err := os.ReadFile(filepath.Join(ws.Dir, "assets", "binary.bin"))
	if err != nil {
		t.Fatalf("failed to read binary file: %v", err)
	}
	if len(binaryData) != 512 {
		t.Fatalf("binary size mismatch: expected 512, got %d", len(binaryData))
	}
	for i, b := range binaryData {
		expected := byte(i % 256)
		if b != expected {
			t.Fatalf("binary content mismatch at offset %d: expected %d, got %d", i, expected, b)
		}
	}

	inline, err := os.ReadFile(filepath.Join(ws.Dir, "assets", "inline.bin"))
	if err != nil {
		t.Fatalf("failed to read inline file: %v", err)
	}
	if !bytes.Equal(inline, []byte{0, 1, 2, 3}) {
		t.Fatalf("inline content mismatch: got %v", inline)
	}

	out, _, err := ws.Run("", "ls", ws.Dir)
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if out != "assets/\ndocs/\nseed.def\n" {
		t.Fatalf("ls mismatch: got %q", out)
	}
}

func TestE2EHTTPErrors(t *testing.T) {
	errorFile := NewTestFile("/not-found").
		WithError(404).
		Build()

	ws := testEnv.NewWorkspace(t, []*TestFileSpec{errorFile})
	_, stderr, err := ws.TrySeed(t, `[{
		"path": "missing.txt",
		"source": {"type": "http", "url": "%s/not-found"}
	}]`)
	if err == nil {
		t.Fatal("expected seeding a 404 source to fail")
	}
	if !strings.Contains(stderr, "404") {
		t.Fatalf("expected status in error output, got %q", stderr)
	}

	// nothing is written for a failed source
	if _, err := os.Stat(filepath.Join(ws.Dir, "missing.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected missing.txt to not exist, stat err: %v", err)
	}
}

func TestE2ELocate(t *testing.T) {
	ws := testEnv.NewWorkspace(t, nil)
	ws.Seed(t, `
- path: project/.externals
  source: {type: inline, content: marker}
- path: project/src/pkg/main.go
  source: {type: inline, content: "package main"}
`)

	out, _, err := ws.Run("", "locate", ".externals", "--from", filepath.Join(ws.Dir, "project", "src", "pkg"))
	if err != nil {
		t.Fatalf("locate failed: %v", err)
	}
	expected := filepath.ToSlash(filepath.Join(ws.Dir, "project", ".externals")) + "\n"
	if out != expected {
		t.Fatalf("locate mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}

	_, _, err = ws.Run("", "locate", "zz-not-anywhere", "--from", filepath.Join(ws.Dir, "project"))
	if err == nil {
		t.Fatal("expected locate of a missing name to fail")
	}
}

func TestE2EWriteLargeContent(t *testing.T) {
	largeContent := strings.Repeat("ABCDEFGHIJ", 100_000) // 1MB

	ws := testEnv.NewWorkspace(t, nil)
	target := filepath.Join(ws.Dir, "nested", "dir", "large.txt")

	if _, stderr, err := ws.Run(largeContent, "write", target); err != nil {
		t.Fatalf("write failed: %v\n%s", err, stderr)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("failed to read large file: %v", err)
	}
	if string(data) != largeContent {
		t.Fatalf("large file content mismatch")
	}

	// no temp siblings remain after the rename
	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatalf("failed to read directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only large.txt, got %d entries", len(entries))
	}
}

func TestE2EVerboseLogs(t *testing.T) {
	ws := testEnv.NewWorkspace(t, nil)
	_, stderr, err := ws.Run("", "-v", "5", "ls", ws.Dir)
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(stderr, "Configuration resolved") {
		t.Fatalf("expected debug logs on stderr, got %q", stderr)
	}
}

// E2ETestEnvironment manages shared resources for all e2e tests
type E2ETestEnvironment struct {
	ExternalsBin string
	BaseDir      string
}

// TestFileSpec defines a served file's content and behavior
type TestFileSpec struct {
	path        string
	content     []byte
	contentType string
	etag        string
	delay       time.Duration
	errorCode   int // 0 = success, 404, 500, etc.
}

// TestFileBuilder provides a fluent API for creating test files
type TestFileBuilder struct {
	spec TestFileSpec
}

// Workspace is a per-test directory with its own mock HTTP server
type Workspace struct {
	Dir    string
	server *httptest.Server
	bin    string
}

// NewTestFile creates a new test file builder with the given path
func NewTestFile(path string) *TestFileBuilder {
	return &TestFileBuilder{
		spec: TestFileSpec{
			path:        path,
			contentType: "text/plain",
			etag:        fmt.Sprintf(`"etag-%s"`, strings.TrimPrefix(path, "/")),
		},
	}
}

// WithTextContent sets text content and appropriate content type
func (b *TestFileBuilder) WithTextContent(content string) *TestFileBuilder {
	b.spec.content = []byte(content)
	b.spec.contentType = "text/plain"
	return b
}

// WithBinaryContent generates binary content of the specified size
func (b *TestFileBuilder) WithBinaryContent(size int) *TestFileBuilder {
	b.spec.content = make([]byte, size)
	for i := range b.spec.content {
		b.spec.content[i] = byte(i % 256)
	}
	b.spec.contentType = "application/octet-stream"
	return b
}

// WithDelay adds artificial delay to responses
func (b *TestFileBuilder) WithDelay(delay time.Duration) *TestFileBuilder {
	b.spec.delay = delay
	return b
}

// WithError makes the file return an HTTP error status
func (b *TestFileBuilder) WithError(statusCode int) *TestFileBuilder {
	b.spec.errorCode = statusCode
	return b
}

// Build creates the final TestFileSpec
func (b *TestFileBuilder) Build() *TestFileSpec {
	return &b.spec
}

// NewE2ETestEnvironment creates the shared test environment
func NewE2ETestEnvironment(externalsBinary string) (*E2ETestEnvironment, error) {
	baseDir, err := os.MkdirTemp("", "externals-e2e-tests")
	if err != nil {
		return nil, err
	}
	return &E2ETestEnvironment{ExternalsBin: externalsBinary, BaseDir: baseDir}, nil
}

// Close cleans up the test environment
func (env *E2ETestEnvironment) Close() {
	if env.BaseDir != "" {
		_ = os.RemoveAll(env.BaseDir) // Best effort cleanup
	}
}

// NewWorkspace serves files from a fresh mock server and creates a directory
// for the test. Both are released when the test ends.
func (env *E2ETestEnvironment) NewWorkspace(t *testing.T, files []*TestFileSpec) *Workspace {
	t.Helper()

	mux := http.NewServeMux()
	for _, file := range files {
		mux.HandleFunc(file.path, func(w http.ResponseWriter, r *http.Request) {
			handleMockRequest(w, r, file)
		})
	}
	server := httptest.NewServer(mux)

	testID := strings.ReplaceAll(t.Name(), "/", "_")
	dir := filepath.Join(env.BaseDir, "ws-"+testID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create workspace dir: %v", err)
	}

	t.Cleanup(func() {
		server.Close()
		_ = os.RemoveAll(dir) // Best effort cleanup
	})
	return &Workspace{Dir: dir, server: server, bin: env.ExternalsBin}
}

// handleMockRequest handles HTTP requests for mock files
func handleMockRequest(w http.ResponseWriter, r *http.Request, file *TestFileSpec) {
	if file.delay > 0 {
		time.Sleep(file.delay)
	}
	if file.errorCode != 0 {
		http.Error(w, fmt.Sprintf("Mock error %d", file.errorCode), file.errorCode)
		return
	}

	w.Header().Set("Content-Type", file.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.content)))
	w.Header().Set("ETag", file.etag)

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.content); err != nil {
		// In tests, we can't really recover from write errors
		panic(fmt.Sprintf("Failed to write mock response: %v", err))
	}
}

// Run executes the CLI with stdin and returns its output
func (ws *Workspace) Run(stdin string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(ws.bin, args...)
	cmd.Dir = ws.Dir
	cmd.Stdin = strings.NewReader(stdin)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// TrySeed writes defTemplate, with the mock server URL substituted, into the
// workspace and applies it there
func (ws *Workspace) TrySeed(t *testing.T, defTemplate string) (stdout, stderr string, err error) {
	t.Helper()

	def := defTemplate
	if strings.Contains(defTemplate, "%") {
		def = fmt.Sprintf(defTemplate, ws.server.URL)
	}
	// yaml is a superset of json so one extension serves both
	defFile := filepath.Join(ws.Dir, "seed.def")
	if err := os.WriteFile(defFile, []byte(def), 0o644); err != nil {
		t.Fatalf("Failed to write seed definition: %v", err)
	}
	return ws.Run("", "seed", defFile, "--into", ws.Dir)
}

// Seed is TrySeed that fails the test on error
func (ws *Workspace) Seed(t *testing.T, defTemplate string) {
	t.Helper()
	if _, stderr, err := ws.TrySeed(t, defTemplate); err != nil {
		t.Fatalf("seed failed: %v\n%s", err, stderr)
	}
}
