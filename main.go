package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/pleimann/matrixpush/internal/batch"
	"github.com/pleimann/matrixpush/internal/client"
	"github.com/pleimann/matrixpush/internal/config"
	"github.com/pleimann/matrixpush/internal/preview"
	"github.com/pleimann/matrixpush/internal/raster"
	"github.com/pleimann/matrixpush/internal/session"
	"github.com/pleimann/matrixpush/internal/ui"
	"github.com/pleimann/matrixpush/internal/utils"
	"github.com/pleimann/matrixpush/internal/watch"
)

const Version = "0.1.0"

const defaultConfigPath = "matrixpush.yaml"

func main() {
	// Check for subcommands first
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "size":
			runSize(os.Args[2:])
			return
		case "image":
			runImage(os.Args[2:])
			return
		case "text":
			runText(os.Args[2:])
			return
		case "watch":
			runWatch(os.Args[2:])
			return
		case "init-config":
			runInitConfig(os.Args[2:])
			return
		case "help", "-h", "--help":
			printUsage()
			os.Exit(0)
		}
	}

	fs := pflag.NewFlagSet(utils.ExecutableName(), pflag.ContinueOnError)
	common := addCommonFlags(fs)
	version := fs.BoolP("version", "V", false, "print version and exit")
	fs.Usage = printUsage

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if *version {
		ui.PrintVersion(Version)
		os.Exit(0)
	}

	if fs.NArg() > 0 {
		ui.PrintFatalError("Unknown command", fmt.Sprintf("%q, run %s help", fs.Arg(0), utils.ExecutableName()))
		os.Exit(2)
	}

	runInteractive(common)
}

func printUsage() {
	ui.PrintUsage(Version)
}

// commonFlags are accepted by every command
type commonFlags struct {
	configPath string
	verbose    bool
}

func addCommonFlags(fs *pflag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVarP(&c.configPath, "config", "c", defaultConfigPath, "path to configuration file")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	return c
}

// parseFlags parses a subcommand's flags, exiting on misuse
func parseFlags(fs *pflag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func setupLogging(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// setup loads the configuration and starts logging
func setup(c *commonFlags) (*config.Config, *slog.Logger) {
	logger := setupLogging(c.verbose)

	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}
	if !config.Exists(c.configPath) {
		logger.Debug("No config file, using defaults", "path", c.configPath)
	} else {
		logger.Debug("Loaded configuration", "path", c.configPath)
	}
	logger.Debug("Display server", "url", cfg.Server.URL)

	return cfg, logger
}

func newClient(cfg *config.Config, logger *slog.Logger) *client.Client {
	c, err := client.New(cfg.Server.URL,
		client.WithTimeout(time.Duration(cfg.Server.TimeoutMs)*time.Millisecond),
		client.WithLogger(logger),
	)
	if err != nil {
		ui.PrintFatalError("Invalid server url", err.Error())
		os.Exit(1)
	}
	return c
}

// newSession connects to the display and reports the geometry in use
func newSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) *session.Session {
	rz, err := raster.NewRasterizer(cfg.Raster.Backend, cfg.Raster.Kernel)
	if err != nil {
		ui.PrintFatalError("Invalid raster settings", err.Error())
		os.Exit(1)
	}
	logger.Debug("Rasterizer", "backend", cfg.Raster.Backend, "kernel", cfg.Raster.Kernel)

	s, err := session.New(ctx, cfg, newClient(cfg, logger), rz, logger)
	if err != nil {
		ui.PrintFatalError("Failed to start session", err.Error())
		os.Exit(1)
	}

	ui.PrintGeometry(s.Geometry(), s.Warning())
	return s
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runSize handles the size subcommand
func runSize(args []string) {
	fs := pflag.NewFlagSet("size", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	parseFlags(fs, args)

	cfg, logger := setup(common)

	ctx, cancel := signalContext()
	defer cancel()

	d, err := newClient(cfg, logger).Size(ctx)
	if err != nil {
		ui.PrintFatalError("Failed to query display size", err.Error())
		os.Exit(1)
	}
	ui.PrintGeometry(d, nil)
}

// runImage handles the image subcommand
func runImage(args []string) {
	fs := pflag.NewFlagSet("image", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	delay := fs.IntP("delay", "d", 0, "delay between images in ms")
	showPreview := fs.BoolP("preview", "p", false, "show the encoded images before sending")
	fs.Usage = func() { ui.PrintImageUsage(config.Default().Limits.MaxImages) }
	parseFlags(fs, args)

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, logger := setup(common)

	ctx, cancel := signalContext()
	defer cancel()

	s := newSession(ctx, cfg, logger)

	if err := s.AddFiles(fs.Args()...); err != nil {
		ui.PrintNotice(err)
		os.Exit(1)
	}

	if fs.Changed("delay") {
		if err := s.SetDelay(strconv.Itoa(*delay)); err != nil {
			if !errors.Is(err, batch.ErrDelayDisabled) {
				ui.PrintNotice(err)
				os.Exit(1)
			}
			fmt.Println(ui.Warning("--delay ignored: " + err.Error()))
		}
	}

	if *showPreview {
		rasters, err := s.Preview(ctx)
		if err != nil {
			ui.PrintFatalError("Failed to encode images", err.Error())
			os.Exit(1)
		}
		fmt.Println(preview.RenderAll(rasters))
		if !confirmSend() {
			return
		}
	}

	status, err := s.SubmitImages(ctx)
	if err != nil {
		ui.PrintFatalError("Failed to send images", err.Error())
		os.Exit(1)
	}
	ui.PrintSent("Images", status)
}

// runText handles the text subcommand
func runText(args []string) {
	fs := pflag.NewFlagSet("text", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	color := fs.String("color", "", "text color as #RRGGBB")
	mode := fs.StringP("mode", "m", "", "static or scroll")
	showPreview := fs.BoolP("preview", "p", false, "show the layout before sending")
	fs.Usage = ui.PrintTextUsage
	parseFlags(fs, args)

	cfg, logger := setup(common)

	ctx, cancel := signalContext()
	defer cancel()

	s := newSession(ctx, cfg, logger)

	text := strings.Join(fs.Args(), " ")
	errs := []error{s.SetText(text), s.SetMode(*mode)}
	if fs.Changed("color") {
		errs = append(errs, s.SetColor(*color))
	}

	if !s.TextSubmitEnabled() {
		if !ui.IsInteractive() {
			ui.PrintNotice(errors.Join(errs...))
			os.Exit(1)
		}
		if !editText(s) {
			return
		}
	}

	if *showPreview {
		snap := s.Snapshot()
		fmt.Println(preview.Render(preview.Text(snap.Geometry, snap.Text, snap.Color, snap.Mode)))
		if !confirmSend() {
			return
		}
	}

	status, err := s.SubmitText(ctx)
	if err != nil {
		ui.PrintFatalError("Failed to send text", err.Error())
		os.Exit(1)
	}
	ui.PrintSent("Text", status)
}

// editText shows the text form until it is complete or cancelled
func editText(s *session.Session) bool {
	snap := s.Snapshot()
	fields := &ui.TextFields{
		Text:     snap.Text,
		Color:    snap.Color.Hex(),
		Mode:     snap.Mode.String(),
		SetText:  s.SetText,
		SetColor: s.SetColor,
		SetMode:  s.SetMode,
	}

	ok, err := ui.TextForm(fields)
	if err != nil {
		ui.PrintError(err.Error())
		return false
	}
	return ok && s.TextSubmitEnabled()
}

func confirmSend() bool {
	if !ui.IsInteractive() {
		return true
	}
	yes, err := ui.Confirm("Send to the display?")
	if err != nil {
		ui.PrintError(err.Error())
		return false
	}
	return yes
}

// runWatch handles the watch subcommand
func runWatch(args []string) {
	fs := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	showPreview := fs.BoolP("preview", "p", false, "show every encoded image")
	fs.Usage = ui.PrintWatchUsage
	parseFlags(fs, args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)

	cfg, logger := setup(common)

	ctx, cancel := signalContext()
	defer cancel()

	s := newSession(ctx, cfg, logger)

	var mu sync.Mutex
	send := func(path string) {
		mu.Lock()
		defer mu.Unlock()

		s.ClearImages()
		if err := s.AddFiles(path); err != nil {
			ui.PrintNotice(err)
			return
		}
		if *showPreview {
			if rasters, err := s.Preview(ctx); err == nil {
				fmt.Println(preview.RenderAll(rasters))
			}
		}

		status, err := s.SubmitImages(ctx)
		if err != nil {
			ui.PrintNotice(err)
			return
		}
		ui.PrintSent(path, status)
	}

	w, err := watch.NewWatcher(path, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, logger)
	if err != nil {
		ui.PrintFatalError("Failed to watch file", err.Error())
		os.Exit(1)
	}
	w.OnChange(send)
	w.Start()
	defer w.Stop()

	send(path)
	fmt.Println(ui.Muted(fmt.Sprintf("Watching %s, press ctrl+c to stop", w.Path())))

	<-ctx.Done()
	logger.Debug("Received shutdown signal")
}

// runInitConfig handles the init-config subcommand
func runInitConfig(args []string) {
	fs := pflag.NewFlagSet("init-config", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	url := fs.StringP("url", "u", config.Default().Server.URL, "display server address")
	fs.Usage = ui.PrintInitConfigUsage
	parseFlags(fs, args)

	setupLogging(common.verbose)

	if _, err := client.New(*url); err != nil {
		ui.PrintFatalError("Invalid server url", err.Error())
		os.Exit(1)
	}

	if config.Exists(common.configPath) {
		if !fs.Changed("url") {
			fmt.Println(ui.Warning(common.configPath + " already exists, pass --url to change the server"))
			return
		}
		if err := config.UpdateServerURL(common.configPath, *url); err != nil {
			ui.PrintFatalError("Failed to update config", err.Error())
			os.Exit(1)
		}
		ui.PrintConfigUpdated(common.configPath, *url)
		return
	}

	if err := config.CreateDefaultConfig(common.configPath, *url); err != nil {
		ui.PrintFatalError("Failed to create config", err.Error())
		os.Exit(1)
	}
	ui.PrintConfigCreated(common.configPath, *url)
}

// runInteractive drives a session from menus until the user quits
func runInteractive(common *commonFlags) {
	if !ui.IsInteractive() {
		ui.PrintFatalError("Not a terminal", fmt.Sprintf("run %s help for the non-interactive commands", utils.ExecutableName()))
		os.Exit(2)
	}

	cfg, logger := setup(common)

	ctx, cancel := signalContext()
	defer cancel()

	s := newSession(ctx, cfg, logger)

	for ctx.Err() == nil {
		snap := s.Snapshot()

		action, err := ui.ActionMenu(snap)
		if err != nil {
			ui.PrintFatalError("Menu failed", err.Error())
			os.Exit(1)
		}

		switch action {
		case ui.ActionAddFiles:
			paths, ok, err := ui.PathPrompt()
			if err != nil {
				ui.PrintError(err.Error())
			} else if ok {
				ui.PrintNotice(s.AddFiles(paths...))
			}

		case ui.ActionRemove:
			i, ok, err := ui.RemovePrompt(snap.Sources)
			if err != nil {
				ui.PrintError(err.Error())
			} else if ok {
				ui.PrintNotice(s.Remove(i))
			}

		case ui.ActionDelay:
			if _, err := ui.DelayPrompt(snap.Delay, cfg.Limits.MinDelayMs, cfg.Limits.MaxDelayMs, s.SetDelay); err != nil {
				ui.PrintError(err.Error())
			}

		case ui.ActionPreview:
			rasters, err := s.Preview(ctx)
			if err != nil {
				ui.PrintNotice(err)
				break
			}
			fmt.Println(preview.RenderAll(rasters))

		case ui.ActionClear:
			s.ClearImages()

		case ui.ActionSendImages:
			status, err := s.SubmitImages(ctx)
			if err != nil {
				ui.PrintNotice(err)
				break
			}
			ui.PrintSent("Images", status)

		case ui.ActionText:
			editText(s)

		case ui.ActionSendText:
			status, err := s.SubmitText(ctx)
			if err != nil {
				ui.PrintNotice(err)
				break
			}
			ui.PrintSent("Text", status)

		case ui.ActionStatus:
			ui.PrintStatus(s.Snapshot())

		case ui.ActionQuit:
			return
		}
	}
}
