package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/xdg/hostgate/internal/audit"
	"github.com/xdg/hostgate/internal/clog"
	"github.com/xdg/hostgate/internal/executor"
	"github.com/xdg/hostgate/internal/policy"
	"github.com/xdg/hostgate/internal/version"
	"github.com/xdg/hostgate/internal/workspace"
)

const testKey = "test-key"

var testWhitelist = []string{"git status", "git pull", "ls -l", "echo Hello"}

// fakeExecutor records requests and returns a canned result.
type fakeExecutor struct {
	result executor.Result
	err    error
	calls  []executor.Request
	ctxErr error
}

func (f *fakeExecutor) Run(ctx context.Context, req executor.Request) (executor.Result, error) {
	f.calls = append(f.calls, req)
	f.ctxErr = ctx.Err()
	res := f.result
	res.Command = req.Command
	return res, f.err
}

func newTestServer(t *testing.T, exec executor.Executor) (*Server, *bytes.Buffer) {
	t.Helper()
	clog.ReplaceGlobal(clog.TestLogger(&bytes.Buffer{}))
	t.Cleanup(clog.Reset)

	root := t.TempDir()
	s := NewServer(StaticSecret(testKey), policy.NewPrefixPolicy(testWhitelist), exec, root)
	var auditBuf bytes.Buffer
	s.AuditLogger = audit.NewLogger(&auditBuf)
	return s, &auditBuf
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(APIKeyHeader, testKey)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func strPtr(s string) *string { return &s }

func TestNewServer(t *testing.T) {
	s := NewServer(StaticSecret("k"), nil, nil, "/srv")
	if s.Addr != "127.0.0.1:5000" {
		t.Errorf("Addr = %q, want %q", s.Addr, "127.0.0.1:5000")
	}
	if s.Files == nil || s.Lister == nil {
		t.Error("NewServer should wire file access and lister")
	}
	if s.WorkspaceRoot != "/srv" {
		t.Errorf("WorkspaceRoot = %q, want %q", s.WorkspaceRoot, "/srv")
	}
}

func TestServer_StartStop(t *testing.T) {
	s, _ := newTestServer(t, &fakeExecutor{})
	s.Addr = "127.0.0.1:0"

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.ListenAddr() == "" {
		t.Error("ListenAddr() should be non-empty after Start")
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() should fail")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestServer_StartRequiresVerifier(t *testing.T) {
	s := NewServer(nil, nil, &fakeExecutor{}, t.TempDir())
	s.Addr = "127.0.0.1:0"
	if err := s.Start(); err == nil {
		_ = s.Stop(context.Background())
		t.Fatal("Start() without verifier should fail")
	}
}

func TestServer_AuthRequiredOnEveryRoute(t *testing.T) {
	exec := &fakeExecutor{}
	s, _ := newTestServer(t, exec)
	h := s.Handler()

	routes := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPost, "/command", `{"command":"echo Hello"}`},
		{http.MethodPost, "/command", `not json`},
		{http.MethodGet, "/file/read?path=/etc/hosts", ""},
		{http.MethodPost, "/file/write", `{"path":"/tmp/x","content":"y"}`},
		{http.MethodGet, "/workspace/list", ""},
		{http.MethodGet, "/status", ""},
		{http.MethodGet, "/vscode/status", ""},
		{http.MethodGet, "/nope", ""},
	}
	for _, rt := range routes {
		for _, key := range []string{"", "wrong"} {
			req := httptest.NewRequest(rt.method, rt.target, strings.NewReader(rt.body))
			if key != "" {
				req.Header.Set(APIKeyHeader, key)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("%s %s key=%q: status = %d, want 401", rt.method, rt.target, key, rr.Code)
			}
		}
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor called %d times without auth", len(exec.calls))
	}
}

func TestServer_ResponseHeaders(t *testing.T) {
	s, _ := newTestServer(t, &fakeExecutor{})
	rr := doRequest(t, s.Handler(), http.MethodGet, "/status", nil)

	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if got := rr.Header().Get(RequestIDHeader); len(got) != 36 {
		t.Errorf("%s = %q, want a UUID", RequestIDHeader, got)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

func TestServer_Status(t *testing.T) {
	s, _ := newTestServer(t, &fakeExecutor{})
	h := s.Handler()

	for _, path := range []string{"/status", "/vscode/status"} {
		rr := doRequest(t, h, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, rr.Code)
		}
		got := decode[StatusResponse](t, rr)
		want := StatusResponse{WorkspaceRoot: s.WorkspaceRoot, OSType: runtime.GOOS, APIVersion: version.APIVersion}
		if got != want {
			t.Errorf("%s: body = %+v, want %+v", path, got, want)
		}
	}
}

func TestServer_Command_Allowed(t *testing.T) {
	exec := &fakeExecutor{result: executor.Result{Stdout: "Hello from AI\n", Succeeded: true}}
	s, auditBuf := newTestServer(t, exec)

	rr := doRequest(t, s.Handler(), http.MethodPost, "/command",
		CommandRequest{Command: strPtr("  echo Hello from AI"), Cwd: `C:\work`})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	got := decode[CommandResponse](t, rr)
	if got.Command != "  echo Hello from AI" || got.Stdout != "Hello from AI\n" || got.Stderr != "" || !got.Succeeded {
		t.Errorf("body = %+v", got)
	}
	if len(exec.calls) != 1 || exec.calls[0].Dir != `C:\work` {
		t.Errorf("executor calls = %+v, want one call with Dir C:\\work", exec.calls)
	}
	if !strings.Contains(auditBuf.String(), "GATEWAY REQUEST") || !strings.Contains(auditBuf.String(), "GATEWAY COMPLETE") {
		t.Errorf("audit = %q, want REQUEST and COMPLETE", auditBuf.String())
	}
}

func TestServer_Command_NonZeroExitIsOK(t *testing.T) {
	exec := &fakeExecutor{result: executor.Result{Stderr: "fatal: not a git repository\n", ExitCode: 128}}
	s, _ := newTestServer(t, exec)

	rr := doRequest(t, s.Handler(), http.MethodPost, "/command", CommandRequest{Command: strPtr("git status")})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	got := decode[CommandResponse](t, rr)
	if got.Succeeded || got.ExitCode != 128 || got.Stderr == "" {
		t.Errorf("body = %+v, want failed result with stderr", got)
	}
}

func TestServer_Command_Denied(t *testing.T) {
	exec := &fakeExecutor{}
	s, auditBuf := newTestServer(t, exec)
	h := s.Handler()

	rr := doRequest(t, h, http.MethodPost, "/command", CommandRequest{Command: strPtr("rm -rf /")})

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	got := decode[ErrorResponse](t, rr)
	if got.Error != "Command not allowed: 'rm -rf /'" || got.Command != "rm -rf /" {
		t.Errorf("body = %+v", got)
	}
	if len(exec.calls) != 0 {
		t.Error("executor called for denied command")
	}
	if !strings.Contains(auditBuf.String(), "GATEWAY DENY") {
		t.Errorf("audit = %q, want DENY", auditBuf.String())
	}

	// The server keeps serving after a denial.
	rr = doRequest(t, h, http.MethodGet, "/status", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status after denial = %d, want 200", rr.Code)
	}
}

func TestServer_Command_NilPolicyDeniesAll(t *testing.T) {
	exec := &fakeExecutor{}
	s, _ := newTestServer(t, exec)
	s.Policy = nil

	rr := doRequest(t, s.Handler(), http.MethodPost, "/command", CommandRequest{Command: strPtr("git status")})
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

func TestServer_Command_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing command", `{"cwd":"/tmp"}`},
		{"empty object", `{}`},
		{"not json", `echo Hello`},
		{"wrong type", `{"command": 42}`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			s, _ := newTestServer(t, exec)
			rr := doRequest(t, s.Handler(), http.MethodPost, "/command", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
			if decode[ErrorResponse](t, rr).Error == "" {
				t.Error("error message is empty")
			}
			if len(exec.calls) != 0 {
				t.Error("executor called for bad request")
			}
		})
	}
}

func TestServer_Command_ProcessError(t *testing.T) {
	exec := &fakeExecutor{
		result: executor.Result{ExitCode: -1},
		err:    &executor.ProcessError{Op: executor.OpStart, Command: "git status", Err: errors.New("no such shell")},
	}
	s, auditBuf := newTestServer(t, exec)

	rr := doRequest(t, s.Handler(), http.MethodPost, "/command", CommandRequest{Command: strPtr("git status")})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	got := decode[CommandErrorResponse](t, rr)
	if got.Command != "git status" || !strings.Contains(got.Error, "no such shell") {
		t.Errorf("body = %+v", got)
	}
	var raw map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &raw)
	for _, key := range []string{"error", "command", "stdout", "stderr"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("500 body missing %q: %s", key, rr.Body.String())
		}
	}
	if !strings.Contains(auditBuf.String(), "GATEWAY FAIL") {
		t.Errorf("audit = %q, want FAIL", auditBuf.String())
	}
}

func TestServer_Command_NotCancelledWithRequest(t *testing.T) {
	exec := &fakeExecutor{result: executor.Result{Succeeded: true}}
	s, _ := newTestServer(t, exec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{"command":"git pull"}`)).WithContext(ctx)
	req.Header.Set(APIKeyHeader, testKey)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if len(exec.calls) != 1 {
		t.Fatalf("executor calls = %d, want 1", len(exec.calls))
	}
	if exec.ctxErr != nil {
		t.Errorf("executor context error = %v, want nil", exec.ctxErr)
	}
}

func TestServer_BodyLimit(t *testing.T) {
	exec := &fakeExecutor{}
	s, _ := newTestServer(t, exec)
	s.MaxBodyBytes = 64
	h := s.Handler()

	big := `{"command":"echo Hello ` + strings.Repeat("x", 100) + `"}`
	rr := doRequest(t, h, http.MethodPost, "/command", big)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("declared length: status = %d, want 413", rr.Code)
	}

	// Unknown length is caught while decoding.
	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(big))
	req.ContentLength = -1
	req.Header.Set(APIKeyHeader, testKey)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("unknown length: status = %d, want 413", rr.Code)
	}

	if len(exec.calls) != 0 {
		t.Error("executor called for oversized body")
	}
}

func TestServer_FileWriteRead(t *testing.T) {
	s, auditBuf := newTestServer(t, &fakeExecutor{})
	h := s.Handler()
	path := filepath.Join(t.TempDir(), "notes.txt")
	content := "line one\nünïcode\n"

	rr := doRequest(t, h, http.MethodPost, "/file/write", FileWriteRequest{Path: &path, Content: &content})
	if rr.Code != http.StatusOK {
		t.Fatalf("write status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	wrote := decode[FileWriteResponse](t, rr)
	if wrote.Path != path || wrote.Size != len(content) {
		t.Errorf("write body = %+v, want path %q size %d", wrote, path, len(content))
	}

	rr = doRequest(t, h, http.MethodGet, "/file/read?path="+url.QueryEscape(path), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("read status = %d, want 200", rr.Code)
	}
	if got := decode[FileReadResponse](t, rr).Content; got != content {
		t.Errorf("content = %q, want %q", got, content)
	}

	log := auditBuf.String()
	if !strings.Contains(log, "GATEWAY FILE_WRITE") || !strings.Contains(log, "GATEWAY FILE_READ") {
		t.Errorf("audit = %q, want FILE_WRITE and FILE_READ", log)
	}
}

func TestServer_FileWrite_EmptyContent(t *testing.T) {
	s, _ := newTestServer(t, &fakeExecutor{})
	path := filepath.Join(t.TempDir(), "empty.txt")

	rr := doRequest(t, s.Handler(), http.MethodPost, "/file/write", FileWriteRequest{Path: &path, Content: strPtr("")})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if decode[FileWriteResponse](t, rr).Size != 0 {
		t.Error("size should be 0")
	}
}

func TestServer_FileErrors(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(binary, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
	}{
		{"read missing path param", http.MethodGet, "/file/read", nil, http.StatusBadRequest},
		{"read missing file", http.MethodGet, "/file/read?path=" + url.QueryEscape(filepath.Join(dir, "nope")), nil, http.StatusNotFound},
		{"read directory", http.MethodGet, "/file/read?path=" + url.QueryEscape(dir), nil, http.StatusInternalServerError},
		{"read non-UTF-8 file", http.MethodGet, "/file/read?path=" + url.QueryEscape(binary), nil, http.StatusInternalServerError},
		{"write missing path", http.MethodPost, "/file/write", `{"content":"x"}`, http.StatusBadRequest},
		{"write missing content", http.MethodPost, "/file/write", FileWriteRequest{Path: strPtr(filepath.Join(dir, "a"))}, http.StatusBadRequest},
		{"write bad json", http.MethodPost, "/file/write", `{"path":`, http.StatusBadRequest},
		{"write missing parent", http.MethodPost, "/file/write",
			FileWriteRequest{Path: strPtr(filepath.Join(dir, "no", "such", "f.txt")), Content: strPtr("x")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeExecutor{})
			rr := doRequest(t, s.Handler(), tt.method, tt.target, tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if decode[ErrorResponse](t, rr).Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestServer_List(t *testing.T) {
	s, auditBuf := newTestServer(t, &fakeExecutor{})
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	rr := doRequest(t, s.Handler(), http.MethodGet, "/workspace/list?path="+url.QueryEscape(dir), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	// size must be present as null for directories, not omitted or zero.
	var raw struct {
		Path     string                       `json:"path"`
		Contents []map[string]json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.Path != dir {
		t.Errorf("path = %q, want %q", raw.Path, dir)
	}
	got := map[string]string{}
	for _, e := range raw.Contents {
		var name string
		_ = json.Unmarshal(e["name"], &name)
		got[name] = string(e["is_directory"]) + "/" + string(e["size"])
	}
	want := map[string]string{"a": "true/null", "b.txt": "false/10"}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("entry %q = %q, want %q", k, got[k], v)
		}
	}
	if !strings.Contains(auditBuf.String(), "GATEWAY LIST") {
		t.Errorf("audit = %q, want LIST", auditBuf.String())
	}
}

func TestServer_List_DefaultsToWorkspaceRoot(t *testing.T) {
	s, _ := newTestServer(t, &fakeExecutor{})
	if err := os.WriteFile(filepath.Join(s.WorkspaceRoot, "readme.md"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	rr := doRequest(t, s.Handler(), http.MethodGet, "/workspace/list", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	got := decode[workspace.Listing](t, rr)
	if got.Path != s.WorkspaceRoot || len(got.Entries) != 1 || got.Entries[0].Name != "readme.md" {
		t.Errorf("listing = %+v", got)
	}
}

func TestServer_List_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"missing", filepath.Join(dir, "nope"), http.StatusNotFound},
		{"not a directory", file, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeExecutor{})
			rr := doRequest(t, s.Handler(), http.MethodGet, "/workspace/list?path="+url.QueryEscape(tt.path), nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, &fakeExecutor{})
	rr := doRequest(t, s.Handler(), http.MethodGet, "/command", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /command status = %d, want 405", rr.Code)
	}
}
