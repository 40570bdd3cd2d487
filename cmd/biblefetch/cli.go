package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/biblefetch"
	"github.com/pelletier/go-toml/v2"
)

// Fetch strategies selectable with --mode.
const (
	ModeSequential = "sequential"
	ModeConcurrent = "concurrent"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL         string          `arg:"" required:"" help:"Root URL of the site to discover chapters from"`
	Output      string          `short:"o" default:"." type:"path" env:"BIBLEFETCH_OUTPUT" help:"Output directory"`
	Mode        string          `short:"m" enum:"sequential,concurrent" default:"sequential" help:"Fetch strategy (sequential, concurrent)"`
	Concurrency int             `short:"c" default:"0" help:"Concurrent fetch limit in concurrent mode (0 = unlimited)"`
	SkipGroups  int             `default:"0" help:"Number of leading menu groups to leave out"`
	Resume      bool            `help:"Continue after the last testament completed by an earlier run"`
	State       string          `type:"path" env:"BIBLEFETCH_STATE" help:"Checkpoint database (default: <output>/.biblefetch.db)"`
	MenuCache   bool            `help:"Reuse the menu saved in testament_metadata.json, saving it on first discovery"`
	Timeout     time.Duration   `short:"t" default:"60s" help:"Deadline for one chapter attempt"`
	PauseEvery  int             `default:"25" help:"Long pause after every N requests (0 disables)"`
	RPS         float64         `name:"rps" default:"0" help:"Page loads per second per domain (0 = unlimited)"`
	BrowserBin  string          `type:"path" env:"BIBLEFETCH_BROWSER" help:"Chrome or Chromium binary (default: auto-detect)"`
	Verbose     bool            `short:"v" help:"Enable debug logging"`
	Config      kong.ConfigFlag `type:"path" env:"BIBLEFETCH_CONFIG" help:"TOML file supplying flag defaults"`
}

// Validate checks flag combinations kong cannot express.
func (c *CLI) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return biblefetch.Errorf(biblefetch.EINVALID, "root URL must be an absolute http(s) URL: %q", c.URL)
	}
	if c.SkipGroups < 0 {
		return biblefetch.Errorf(biblefetch.EINVALID, "--skip-groups must not be negative")
	}
	if c.Concurrency < 0 {
		return biblefetch.Errorf(biblefetch.EINVALID, "--concurrency must not be negative")
	}
	if c.Timeout <= 0 {
		return biblefetch.Errorf(biblefetch.EINVALID, "--timeout must be positive")
	}
	return nil
}

// Dependencies holds the context and writers for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

// TOMLLoader reads flag defaults from a TOML document. Keys are flag names,
// with dashes or underscores:
//
//	output = "/data/bible"
//	mode = "concurrent"
//	pause_every = 25
//	timeout = "90s"
func TOMLLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var resolver kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			// Values reach kong's mappers as strings.
			if v, ok := values[key]; ok {
				return fmt.Sprint(v), nil
			}
		}
		return nil, nil
	}
	return resolver, nil
}
