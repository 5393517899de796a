package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ytget/letv"
	"github.com/ytget/letv/errs"
	"github.com/ytget/letv/internal/logger"
	"github.com/ytget/letv/letv/formats"
	"github.com/ytget/letv/letv/timekey"
	"github.com/ytget/letv/pkg/client"
	"github.com/ytget/letv/types"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// resolvedPlaylist is printed for -playlist-resolve.
type resolvedPlaylist struct {
	*types.PlaylistInfo
	Videos []*types.VideoInfo `json:"videos"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("letv", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		flagFormat      string
		flagURLOnly     bool
		flagResolve     bool
		flagConcurrency int
		flagScript      string
		flagEngine      string
		flagTimeout     time.Duration
		flagRetries     int
		flagUA          string
		flagProxy       string
		flagLogLevel    string
		flagLogFormat   string
		flagLogConfig   string
	)

	fs.StringVar(&flagFormat, "format", "best", "Format selector (e.g., 'best', 'worst', 'height<=720', 'ext=mp4', '1300')")
	fs.BoolVar(&flagURLOnly, "url-only", false, "Print only the selected format URL (one per line for playlists)")
	fs.BoolVar(&flagResolve, "playlist-resolve", false, "Resolve every playlist entry instead of listing them")
	fs.IntVar(&flagConcurrency, "concurrency", 1, "Parallelism for playlist resolution")
	fs.StringVar(&flagScript, "tkey-script", "", "JavaScript file defining calcTimeKey(ts) to replace the built-in key schedule")
	fs.StringVar(&flagEngine, "tkey-engine", "goja", "JavaScript engine for -tkey-script (goja, otto)")
	fs.DurationVar(&flagTimeout, "http-timeout", 30*time.Second, "HTTP timeout (e.g., 30s, 1m)")
	fs.IntVar(&flagRetries, "retries", 3, "HTTP retries for transient errors")
	fs.StringVar(&flagUA, "ua", "", "Override User-Agent header")
	fs.StringVar(&flagProxy, "proxy", "", "Proxy URL (http/https/socks5)")
	fs.StringVar(&flagLogLevel, "log-level", "", "Log level (TRACE, DEBUG, INFO, WARN, ERROR); DEBUG and below enable all components")
	fs.StringVar(&flagLogFormat, "log-format", "", "Log format (text, json, color)")
	fs.StringVar(&flagLogConfig, "log-config", os.Getenv(logger.EnvConfigFile), "JSON logging config file; -log-level and -log-format override it")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: letv [flags] <video_show_or_category_url>\n")
		fmt.Fprintln(stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	input := strings.TrimSpace(fs.Arg(0))

	if err := setupLogging(flagLogConfig, flagLogLevel, flagLogFormat); err != nil {
		fmt.Fprintf(stderr, "Invalid logging options: %v\n", err)
		return exitUsage
	}

	c, err := client.NewWith(client.Config{Timeout: flagTimeout, Retries: flagRetries, UserAgent: flagUA, ProxyURL: flagProxy})
	if err != nil {
		fmt.Fprintf(stderr, "Invalid client options: %v\n", err)
		return exitUsage
	}

	ex := letv.New().WithFetcher(c).WithConcurrency(flagConcurrency)
	if flagScript != "" {
		k, err := loadKeyer(flagEngine, flagScript)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid tkey script: %v\n", err)
			return exitUsage
		}
		ex = ex.WithKeyer(timekey.Memo(k))
	}

	res, err := ex.Resolve(ctx, input)
	if err != nil {
		return reportError(stderr, err)
	}

	if res.Video != nil {
		if flagURLOnly {
			return printSelectedURL(stdout, stderr, res.Video, flagFormat)
		}
		return printJSON(stdout, stderr, res.Video)
	}

	pl := res.Playlist
	if len(pl.Entries) == 0 {
		fmt.Fprintln(stderr, "No entries in playlist")
	}
	if !flagResolve {
		if flagURLOnly {
			for _, e := range pl.Entries {
				fmt.Fprintln(stdout, e.URL)
			}
			return exitOK
		}
		return printJSON(stdout, stderr, pl)
	}

	out := resolvedPlaylist{PlaylistInfo: pl, Videos: []*types.VideoInfo{}}
	failed := 0
	for i, r := range ex.ResolveEntries(ctx, pl.Entries) {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "Error resolving [%d/%d] %s: %v\n", i+1, len(pl.Entries), r.Entry.URL, r.Err)
			continue
		}
		if flagURLOnly {
			if f := formats.SelectFormat(r.Info.Formats, flagFormat); f != nil {
				fmt.Fprintln(stdout, f.URL)
			}
			continue
		}
		out.Videos = append(out.Videos, r.Info)
	}
	if !flagURLOnly {
		if code := printJSON(stdout, stderr, out); code != exitOK {
			return code
		}
	}
	if failed > 0 && failed == len(pl.Entries) {
		return exitError
	}
	return exitOK
}

func loadKeyer(engine, path string) (timekey.Keyer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "goja":
		return timekey.LoadGojaKeyer(path)
	case "otto":
		return timekey.LoadScriptKeyer(path)
	}
	return nil, fmt.Errorf("unknown engine %q", engine)
}

// setupLogging starts from the config file when one is given, otherwise
// from LETV_LOG_* variables; explicit flags win over both.
func setupLogging(configPath, level, format string) error {
	cfg := logger.EnvironmentConfig()
	if configPath != "" {
		fileCfg, err := logger.LoadConfigFromFile(configPath)
		if err != nil {
			return err
		}
		cfg = fileCfg
	}
	if level != "" {
		cfg.Level = level
		if l, err := logger.ParseLevel(level); err == nil && l <= logger.DEBUG {
			cfg.EnableAll()
		}
	}
	if format != "" {
		cfg.Format = format
	}
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	lc, err := cfg.ToLoggerConfig()
	if err != nil {
		return err
	}
	logger.SetGlobalLogger(logger.New(lc))
	return nil
}

func reportError(stderr io.Writer, err error) int {
	if errors.Is(err, errs.ErrUnsupportedURL) {
		fmt.Fprintf(stderr, "Unsupported URL: %v\n", err)
		return exitUsage
	}
	if errs.IsExpected(err) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	logger.WithComponent(logger.ComponentApp).Error("internal error", map[string]any{"error": err.Error()})
	fmt.Fprintf(stderr, "Internal error: %v\n", err)
	return exitError
}

func printSelectedURL(stdout, stderr io.Writer, info *types.VideoInfo, selector string) int {
	f := formats.SelectFormat(info.Formats, selector)
	if f == nil {
		fmt.Fprintf(stderr, "No format available for %s\n", info.ID)
		return exitError
	}
	fmt.Fprintln(stdout, f.URL)
	return exitOK
}

func printJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return exitError
	}
	return exitOK
}
