package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/config"
	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

// ErrSilent signals a nonzero exit without an error message. Used by
// --status checks, which already printed everything they should.
var ErrSilent = errors.New("silent failure")

// waitInterval and waitTimeout bound --wait loops. Provisioning a
// server or database routinely takes minutes. Variables so tests can
// tighten the loop.
var (
	waitInterval = 5 * time.Second
	waitTimeout  = 20 * time.Minute
)

var errorColor = color.New(color.FgRed)

// cmdRuntime carries everything a command handler needs: resolved
// configuration, an API client and the output format.
type cmdRuntime struct {
	cfg    *config.Config
	client *api.Client
	format output.Format
}

// newRuntime loads configuration and builds the API client. Output
// format resolution happens here too, so a bad format from config or
// environment also fails before any network call.
func newRuntime(cmd *cobra.Command) (*cmdRuntime, error) {
	cfg, err := config.Load(config.ResolvePath(flagConfig), config.ResolveProfile(flagProfile))
	if err != nil {
		return nil, err
	}

	formatValue := flagOutput
	if formatValue == "" {
		formatValue = cfg.OutputFormat
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return nil, err
	}

	opts := []api.Option{}
	if cfg.BaseURL != "" {
		opts = append(opts, api.WithBaseURL(cfg.BaseURL))
	}
	return &cmdRuntime{
		cfg:    cfg,
		client: api.NewClient(cfg.Token, opts...),
		format: format,
	}, nil
}

// printer builds the response printer wired to the command's streams.
func (r *cmdRuntime) printer(cmd *cobra.Command) output.Printer {
	return output.Printer{
		Out:    cmd.OutOrStdout(),
		Err:    cmd.ErrOrStderr(),
		Format: r.format,
	}
}

// confirm prompts before destructive operations unless --yes was given.
func confirm(cmd *cobra.Command, yes bool) error {
	if yes {
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "This action cannot be undone. Continue? [y/N]: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("aborted")
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return fmt.Errorf("aborted")
	}
}

// removeEach processes a bulk removal one ID at a time. A failing ID is
// reported and does not stop the remaining IDs; the command fails if
// any ID failed.
func removeEach(cmd *cobra.Command, ids []string, remove func(id string) error) error {
	var failed int
	for _, id := range ids {
		if err := remove(id); err != nil {
			failed++
			errorColor.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", id, err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d of %d", failed, len(ids))
	}
	return nil
}

// statusCheck implements --status flags: print the current status, exit
// zero only when it equals the expected value.
func statusCheck(cmd *cobra.Command, current, expected string) error {
	fmt.Fprintln(cmd.OutOrStdout(), current)
	if current != expected {
		return ErrSilent
	}
	return nil
}

// parseID converts a numeric resource ID argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q, expected a number", arg)
	}
	return id, nil
}

// parseFilters wraps output.ParseFilters for the common --filter flag.
func parseFilters(value string) ([]output.Filter, error) {
	return output.ParseFilters(value)
}
