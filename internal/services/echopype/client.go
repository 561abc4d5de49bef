package echopype

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"echosurvey/internal/echodata"
	"echosurvey/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Binaries names the decoder, calibrator, and inspector executables.
type Binaries struct {
	Convert   string
	Calibrate string
	Inspect   string
}

// Client wraps the echopype command line tools.
type Client struct {
	bins    Binaries
	timeout time.Duration
	exec    Executor
}

var _ echodata.Reader = (*Client)(nil)

// New constructs a client. A non-positive timeout disables the per-call limit.
func New(bins Binaries, timeoutSeconds int, opts ...Option) (*Client, error) {
	bins.Convert = strings.TrimSpace(bins.Convert)
	bins.Calibrate = strings.TrimSpace(bins.Calibrate)
	bins.Inspect = strings.TrimSpace(bins.Inspect)
	if bins.Convert == "" || bins.Calibrate == "" || bins.Inspect == "" {
		return nil, services.Wrap(services.ErrConfiguration, "echopype", "new client", "convert, calibrate, and inspect binaries required", nil)
	}
	client := &Client{
		bins:    bins,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Convert decodes a raw capture. The decoder writes one or more
// <stem>*.nc files next to rawPath; Convert returns them sorted.
func (c *Client) Convert(ctx context.Context, rawPath string) ([]string, error) {
	if strings.TrimSpace(rawPath) == "" {
		return nil, errors.New("echopype convert: empty path")
	}
	if _, err := c.run(ctx, "convert", c.bins.Convert, rawPath); err != nil {
		return nil, err
	}
	outputs, err := ConvertedOutputs(rawPath)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "echopype", "convert", fmt.Sprintf("no output written for %s", filepath.Base(rawPath)), nil)
	}
	return outputs, nil
}

// ConvertedOutputs lists the <stem>*.nc files next to a raw capture.
func ConvertedOutputs(rawPath string) ([]string, error) {
	base := filepath.Base(rawPath)
	stem := base
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		stem = base[:idx]
	}
	pattern := filepath.Join(filepath.Dir(rawPath), globEscape(stem)+"*.nc")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("echopype convert: list outputs: %w", err)
	}
	return matches, nil
}

// CalibratedPath returns the derivative path the calibrator writes for ncPath.
func CalibratedPath(ncPath string) string {
	return strings.TrimSuffix(ncPath, filepath.Ext(ncPath)) + "_Sv.nc"
}

// Calibrate computes volume backscatter for a converted file and returns the
// calibrated path.
func (c *Client) Calibrate(ctx context.Context, ncPath string) (string, error) {
	if strings.TrimSpace(ncPath) == "" {
		return "", errors.New("echopype calibrate: empty path")
	}
	if _, err := c.run(ctx, "calibrate", c.bins.Calibrate, ncPath); err != nil {
		return "", err
	}
	out := CalibratedPath(ncPath)
	if _, err := os.Stat(out); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "echopype", "calibrate", fmt.Sprintf("expected output %s", filepath.Base(out)), err)
	}
	return out, nil
}

// Inspect returns the inspector's JSON document for one group of path.
func (c *Client) Inspect(ctx context.Context, group, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("echopype inspect: empty path")
	}
	out, err := c.run(ctx, "inspect "+group, c.bins.Inspect, group, path)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Platform(ctx context.Context, path string) (echodata.Platform, error) {
	data, err := c.Inspect(ctx, echodata.GroupPlatform, path)
	if err != nil {
		return echodata.Platform{}, err
	}
	return echodata.DecodePlatform(data)
}

func (c *Client) Beam(ctx context.Context, path string) (echodata.Beam, error) {
	data, err := c.Inspect(ctx, echodata.GroupBeam, path)
	if err != nil {
		return echodata.Beam{}, err
	}
	return echodata.DecodeBeam(data)
}

func (c *Client) Environment(ctx context.Context, path string) (echodata.Environment, error) {
	data, err := c.Inspect(ctx, echodata.GroupEnvironment, path)
	if err != nil {
		return echodata.Environment{}, err
	}
	return echodata.DecodeEnvironment(data)
}

func (c *Client) Sv(ctx context.Context, path string) (echodata.Sv, error) {
	data, err := c.Inspect(ctx, echodata.GroupSv, path)
	if err != nil {
		return echodata.Sv{}, err
	}
	return echodata.DecodeSv(data)
}

func (c *Client) run(ctx context.Context, op, binary string, args ...string) ([]byte, error) {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	out, err := c.exec.Output(runCtx, binary, args)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "echopype", op, fmt.Sprintf("exceeded %s", c.timeout), err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "echopype", op, filepath.Base(args[len(args)-1]), err)
	}
	return out, nil
}

func globEscape(s string) string {
	replacer := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return replacer.Replace(s)
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return nil, fmt.Errorf("run %s: %w", filepath.Base(binary), err)
		}
		return nil, fmt.Errorf("run %s: %w: %s", filepath.Base(binary), err, lastLines(detail, 5))
	}
	return out, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
