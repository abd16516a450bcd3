package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/xdg/hostgate/internal/audit"
	"github.com/xdg/hostgate/internal/clog"
	"github.com/xdg/hostgate/internal/config"
	"github.com/xdg/hostgate/internal/executor"
	"github.com/xdg/hostgate/internal/hostfs"
	"github.com/xdg/hostgate/internal/policy"
	"github.com/xdg/hostgate/internal/version"
	"github.com/xdg/hostgate/internal/workspace"
)

// FileStore reads and writes host files. It is satisfied by *hostfs.FS.
type FileStore interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) (int, error)
}

// DirectoryLister lists host directories. It is satisfied by *workspace.Lister.
type DirectoryLister interface {
	List(path string) (*workspace.Listing, error)
}

// Server is the hostgate HTTP gateway.
//
// Command requests pass the Policy before reaching the Executor. File and
// directory requests are authorized by the API key alone; they do not
// consult the Policy.
type Server struct {
	// Addr is the address to listen on (e.g., "127.0.0.1:5000").
	Addr string

	// Verifier checks the X-API-Key header. Start fails when it is nil.
	Verifier Verifier

	// Policy decides which commands may run. A nil Policy denies everything.
	Policy policy.Policy

	// Executor runs allowed commands.
	Executor executor.Executor

	// Files serves /file/read and /file/write.
	Files FileStore

	// Lister serves /workspace/list.
	Lister DirectoryLister

	// WorkspaceRoot is reported by /status.
	WorkspaceRoot string

	// MaxBodyBytes caps request bodies; <= 0 means unlimited.
	MaxBodyBytes int64

	// AuditLogger logs gateway events. If nil, no audit logging is performed.
	AuditLogger *audit.Logger

	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
	running  bool
}

// NewServer creates a gateway with host file access and a workspace lister
// rooted at workspaceRoot.
func NewServer(verifier Verifier, pol policy.Policy, exec executor.Executor, workspaceRoot string) *Server {
	return &Server{
		Addr:          config.DefaultListen,
		Verifier:      verifier,
		Policy:        pol,
		Executor:      exec,
		Files:         hostfs.New(),
		Lister:        workspace.NewLister(workspaceRoot),
		WorkspaceRoot: workspaceRoot,
		MaxBodyBytes:  config.DefaultMaxBodyBytes,
	}
}

// Handler returns the gateway's HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /command", s.handleCommand)
	mux.HandleFunc("GET /file/read", s.handleFileRead)
	mux.HandleFunc("POST /file/write", s.handleFileWrite)
	mux.HandleFunc("GET /workspace/list", s.handleList)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /vscode/status", s.handleStatus)

	var h http.Handler = mux
	h = bodyLimitMiddleware(s.MaxBodyBytes)(h)
	h = AuthMiddleware(s.Verifier, s.AuditLogger)(h)
	h = requestIDMiddleware(h)
	return securityHeadersMiddleware(h)
}

// Start begins accepting connections.
// Returns an error if the server is already running, has no verifier, or
// fails to listen.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("gateway already running")
	}
	if s.Verifier == nil {
		return errors.New("gateway requires an API key verifier")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		ErrorLog:          log.New(clog.Writer(clog.LevelError), "gateway: ", 0),
	}
	s.running = true

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			clog.Error("gateway: serve: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight requests
// until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.server.Shutdown(ctx)
}

// ListenAddr returns the actual address the server is listening on.
// This is useful when the server was started with port 0 (random port).
// Returns empty string if the server is not running.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handleCommand processes POST /command.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Command == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request. Missing 'command' key."})
		return
	}
	cmd := *req.Command
	src := sourceOf(r)

	_ = s.AuditLogger.LogRequest(src, cmd, req.Cwd)

	decision := policy.Result{Decision: policy.Deny}
	if s.Policy != nil {
		decision = s.Policy.Decide(cmd)
	}
	if !decision.Allowed() {
		clog.Warn("denied command: %q", cmd)
		_ = s.AuditLogger.LogDeny(src, cmd, "command does not match any whitelist entry")
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Error:   fmt.Sprintf("Command not allowed: '%s'", cmd),
			Command: cmd,
		})
		return
	}

	clog.Info("executing command: %q (entry %q)", cmd, decision.Entry)
	start := time.Now()

	// The command outlives an abandoned request: a client timeout does not
	// stop the process.
	res, err := s.Executor.Run(context.WithoutCancel(r.Context()), executor.Request{
		Command: cmd,
		Dir:     req.Cwd,
	})
	if err != nil {
		clog.Error("command failed: %v", err)
		_ = s.AuditLogger.LogFail(src, cmd, "", err.Error())
		writeJSON(w, http.StatusInternalServerError, CommandErrorResponse{
			Error:   err.Error(),
			Command: cmd,
			Stdout:  res.Stdout,
			Stderr:  res.Stderr,
		})
		return
	}

	_ = s.AuditLogger.LogComplete(src, cmd, decision.Entry, res.ExitCode, time.Since(start))
	writeJSON(w, http.StatusOK, CommandResponse{
		Command:   cmd,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		ExitCode:  res.ExitCode,
		Succeeded: res.Succeeded,
	})
}

// handleFileRead processes GET /file/read?path=.
func (s *Server) handleFileRead(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request. Missing 'path' parameter."})
		return
	}
	src := sourceOf(r)

	content, err := s.Files.ReadFile(path)
	if err != nil {
		_ = s.AuditLogger.LogFail(src, "", path, err.Error())
		if errors.Is(err, hostfs.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "File not found: " + path})
			return
		}
		clog.Error("read %s: %v", path, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	_ = s.AuditLogger.LogFileRead(src, path, len(content))
	writeJSON(w, http.StatusOK, FileReadResponse{Content: content})
}

// handleFileWrite processes POST /file/write.
func (s *Server) handleFileWrite(w http.ResponseWriter, r *http.Request) {
	var req FileWriteRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Path == nil || *req.Path == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request. Missing 'path' key."})
		return
	}
	if req.Content == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request. Missing 'content' key."})
		return
	}
	path := *req.Path
	src := sourceOf(r)

	n, err := s.Files.WriteFile(path, *req.Content)
	if err != nil {
		clog.Error("write %s: %v", path, err)
		_ = s.AuditLogger.LogFail(src, "", path, err.Error())
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	_ = s.AuditLogger.LogFileWrite(src, path, n)
	writeJSON(w, http.StatusOK, FileWriteResponse{Path: path, Size: n})
}

// handleList processes GET /workspace/list?path=.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	src := sourceOf(r)

	listing, err := s.Lister.List(path)
	if err != nil {
		_ = s.AuditLogger.LogFail(src, "", path, err.Error())
		switch {
		case errors.Is(err, workspace.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, workspace.ErrNotDirectory):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			clog.Error("list %s: %v", path, err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	_ = s.AuditLogger.LogList(src, listing.Path, len(listing.Entries))
	writeJSON(w, http.StatusOK, listing)
}

// handleStatus processes GET /status and GET /vscode/status.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		WorkspaceRoot: s.WorkspaceRoot,
		OSType:        runtime.GOOS,
		APIVersion:    version.APIVersion,
	})
}

// decodeBody decodes a JSON request body into v. On failure it writes the
// error response (413 for an oversized body, 400 otherwise) and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: tooLargeMessage(tooLarge.Limit)})
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request. Body must be a JSON object."})
	return false
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
