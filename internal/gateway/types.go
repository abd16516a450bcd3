package gateway

// CommandRequest is the body of POST /command. Command is a pointer so a
// missing key can be told apart from an empty command.
type CommandRequest struct {
	Command *string `json:"command"`
	// Cwd is the working directory in host convention.
	Cwd string `json:"cwd,omitempty"`
}

// CommandResponse is returned for a command that ran, whatever its exit code.
type CommandResponse struct {
	Command   string `json:"command"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	ExitCode  int    `json:"exit_code"`
	Succeeded bool   `json:"succeeded"`
}

// CommandErrorResponse is returned with 500 when the process could not be
// started or its output could not be collected.
type CommandErrorResponse struct {
	Error   string `json:"error"`
	Command string `json:"command"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// ErrorResponse is the body of every other non-2xx response. Command is
// set only for policy denials.
type ErrorResponse struct {
	Error   string `json:"error"`
	Command string `json:"command,omitempty"`
}

// FileReadResponse is the body of a successful GET /file/read.
type FileReadResponse struct {
	Content string `json:"content"`
}

// FileWriteRequest is the body of POST /file/write. Both fields are
// required; an empty Content is valid.
type FileWriteRequest struct {
	Path    *string `json:"path"`
	Content *string `json:"content"`
}

// FileWriteResponse is the body of a successful POST /file/write.
type FileWriteResponse struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	WorkspaceRoot string `json:"workspace_root"`
	OSType        string `json:"os_type"`
	APIVersion    string `json:"api_version"`
}
