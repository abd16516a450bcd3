package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xdg/hostgate/internal/client"
	"github.com/xdg/hostgate/internal/term"
)

// listRoot is the --list value meaning "the gateway's workspace root".
const listRoot = "."

// clientOptions holds the operation selected by client flags.
type clientOptions struct {
	check   bool
	command string
	cwd     string
	read    string
	write   string
	content string
	list    string

	hasCommand bool
	hasContent bool
	hasList    bool
}

var (
	clientOpts   clientOptions
	clientServer string
	clientAPIKey string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Call a hostgate server",
	Long: `Call a hostgate server. Exactly one operation is performed per invocation;
with no operation flag, the connection is checked.

Paths are given in caller convention (/work/file.txt) and translated to the
host convention configured under paths (C:\work\file.txt by default).

Exit status is 0 when the server answered, even with an error response,
and 1 when it could not be reached or the flags are inconsistent.`,
	Example: `  hostgate client --check
  hostgate client --cmd "git status" --cwd /work/repo
  hostgate client --read /work/notes.txt
  hostgate client --write /work/notes.txt --content "hello"
  hostgate client --list /work`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runClient,
}

func init() {
	f := clientCmd.Flags()
	f.BoolVar(&clientOpts.check, "check", false, "check the connection to the server")
	f.StringVar(&clientOpts.command, "cmd", "", "run a command on the server")
	f.StringVar(&clientOpts.cwd, "cwd", "", "working directory for --cmd")
	f.StringVar(&clientOpts.read, "read", "", "read a file")
	f.StringVar(&clientOpts.write, "write", "", "write a file (requires --content)")
	f.StringVar(&clientOpts.content, "content", "", "content for --write")
	f.StringVar(&clientOpts.list, "list", "", "list a directory (default: workspace root)")
	f.Lookup("list").NoOptDefVal = listRoot
	f.StringVar(&clientServer, "server", "", "server URL (overrides client.server_url)")
	f.StringVar(&clientAPIKey, "api-key", "", "API key (overrides HOSTGATE_API_KEY)")
	rootCmd.AddCommand(clientCmd)
}

func runClient(cmd *cobra.Command, _ []string) error {
	opts := clientOpts
	opts.hasCommand = cmd.Flags().Changed("cmd")
	opts.hasContent = cmd.Flags().Changed("content")
	opts.hasList = cmd.Flags().Changed("list")

	if err := opts.validate(); err != nil {
		term.Error("%v", err)
		return NewExitCodeError(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		term.Error("failed to load config: %v", err)
		return NewExitCodeError(1)
	}
	if clientServer != "" {
		cfg.Client.ServerURL = clientServer
	}
	if clientAPIKey != "" {
		cfg.Auth.APIKey = clientAPIKey
	}

	c := client.NewClient(cfg.Client.ServerURL, cfg.Auth.APIKey,
		cfg.Client.TimeoutDuration(client.DefaultTimeout), cfg.Paths.Translator())
	return runClientOp(cmd.Context(), c, opts)
}

// validate checks that the flags select exactly one consistent operation.
func (o clientOptions) validate() error {
	ops := 0
	for _, set := range []bool{o.check, o.hasCommand, o.read != "", o.write != "", o.hasList} {
		if set {
			ops++
		}
	}
	switch {
	case ops > 1:
		return errors.New("choose only one of --check, --cmd, --read, --write, --list")
	case o.write != "" && !o.hasContent:
		return errors.New("--write requires --content")
	case o.hasContent && o.write == "":
		return errors.New("--content is only valid with --write")
	case o.cwd != "" && !o.hasCommand:
		return errors.New("--cwd is only valid with --cmd")
	}
	return nil
}

// runClientOp performs the selected operation and prints its result.
// A delivered error response is printed and is not a failure; an
// unreachable server yields exit code 1.
func runClientOp(ctx context.Context, c *client.Client, o clientOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	switch {
	case o.hasCommand:
		err = clientCommand(ctx, c, o.command, o.cwd)
	case o.read != "":
		err = clientRead(ctx, c, o.read)
	case o.write != "":
		err = clientWrite(ctx, c, o.write, o.content)
	case o.hasList:
		path := o.list
		if path == listRoot {
			path = ""
		}
		err = clientList(ctx, c, path)
	default:
		err = clientCheck(ctx, c)
	}
	if err == nil {
		return nil
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		term.Printf("Error %d: %s\n", apiErr.StatusCode, apiErr.Message)
		return nil
	}
	if errors.Is(err, client.ErrUnreachable) {
		term.Error("failed to connect to server at %s: %v", c.BaseURL, err)
		return NewExitCodeError(1)
	}
	term.Error("%v", err)
	return NewExitCodeError(1)
}

func clientCheck(ctx context.Context, c *client.Client) error {
	st, err := c.Status(ctx)
	if err != nil {
		return err
	}
	term.Printf("Connected to server at %s\n", c.BaseURL)
	term.Printf("Workspace root: %s\n", st.WorkspaceRoot)
	term.Printf("OS type: %s\n", st.OSType)
	term.Printf("API version: %s\n", st.APIVersion)
	return nil
}

func clientCommand(ctx context.Context, c *client.Client, command, cwd string) error {
	resp, err := c.RunCommand(ctx, command, cwd)
	if err != nil {
		return err
	}
	term.Printf("%s", withNewline(resp.Stdout))
	term.Section("ERROR OUTPUT:", resp.Stderr)
	return nil
}

func clientRead(ctx context.Context, c *client.Client, path string) error {
	content, err := c.ReadFile(ctx, path)
	if err != nil {
		return err
	}
	term.Printf("%s", withNewline(content))
	return nil
}

func clientWrite(ctx context.Context, c *client.Client, path, content string) error {
	resp, err := c.WriteFile(ctx, path, content)
	if err != nil {
		return err
	}
	term.Printf("File written: %s (%d bytes)\n", resp.Path, resp.Size)
	return nil
}

func clientList(ctx context.Context, c *client.Client, path string) error {
	listing, err := c.List(ctx, path)
	if err != nil {
		return err
	}
	term.Printf("%s", client.FormatListing(listing))
	return nil
}

// withNewline terminates non-empty s with a newline.
func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
