package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julianfbeck/plex-cli/internal/api"
	"github.com/julianfbeck/plex-cli/internal/config"
	"github.com/julianfbeck/plex-cli/internal/mediacontainer"
	"github.com/julianfbeck/plex-cli/internal/store"
	"github.com/spf13/cobra"
)

const defaultDeviceName = "plexctl"

var (
	jsonOutput  bool
	plainOutput bool
	quietMode   bool
	verbose     bool
	noInput     bool
	storeDir    string
	serverFlag  string
	deviceFlag  string
	formatFlag  string
	timeout     time.Duration
	version     = "dev"
	ctx         = context.Background()
	logger      = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:           "plexctl",
	Short:         "Inspect Plex Media Servers and the devices on your Plex account",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		handleError(err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Output as tab-separated text")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "Store directory (default: ~/.plexctl)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Override Plex server URL")
	rootCmd.PersistentFlags().StringVar(&deviceFlag, "device", "", "Use the first connection of a cached server device (name or client identifier)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "", "Response format to request: xml or json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "API request timeout")

	cobra.OnInitialize(func() {
		if jsonOutput && plainOutput {
			plainOutput = false
		}
		logger = newLogger(verbose)
	})
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	return e.Err.Error()
}

func (e ExitError) Unwrap() error {
	return e.Err
}

func exitError(code int, err error) error {
	return ExitError{Code: code, Err: err}
}

// apiError maps a transport failure to the exit code scripts rely on.
func apiError(err error) error {
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, api.ErrTimeout):
		return exitError(5, err)
	case errors.Is(err, api.ErrNoToken):
		return exitError(3, fmt.Errorf("not authenticated. Run 'plexctl login' or set PLEX_TOKEN"))
	case errors.As(err, &statusErr) && statusErr.Unauthorized():
		return exitError(3, err)
	}
	return exitError(4, err)
}

func handleError(err error) {
	var exit ExitError
	if errors.As(err, &exit) {
		printError("%v\n", exit.Err)
		os.Exit(exit.Code)
	}
	printError("%v\n", err)
	os.Exit(1)
}

func outputJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printInfo(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func resolveStoreDir() (string, error) {
	return config.ResolveStoreDir(storeDir)
}

func loadConfig() (*config.Config, string, error) {
	dir, err := resolveStoreDir()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, "", err
	}
	config.ApplyEnv(cfg)

	if serverFlag != "" {
		cfg.Server = serverFlag
	}
	if formatFlag != "" {
		cfg.Format = formatFlag
	}
	if cfg.Server != "" {
		cfg.Server = config.NormalizeServerURL(cfg.Server)
	}

	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
		if cfg.DeviceName == "" {
			cfg.DeviceName = defaultDeviceName
		}
		if err := config.Save(dir, cfg); err != nil {
			return nil, "", err
		}
	}

	return cfg, dir, nil
}

func parseFormat(value string) (mediacontainer.ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "xml":
		return mediacontainer.ContentXML, nil
	case "json":
		return mediacontainer.ContentJSON, nil
	}
	return 0, exitError(2, fmt.Errorf("unknown format %q (want xml or json)", value))
}

func getClient(requireAuth bool) (*api.Client, *config.Config, string, error) {
	cfg, dir, err := loadConfig()
	if err != nil {
		return nil, nil, "", err
	}

	if requireAuth {
		if err := cfg.ValidateAuth(); err != nil {
			return nil, nil, "", exitError(3, err)
		}
	}
	if deviceFlag != "" && serverFlag == "" {
		server, err := serverFromInventory(dir, deviceFlag)
		if err != nil {
			return nil, nil, "", err
		}
		cfg.Server = server
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, nil, "", err
	}

	client := api.NewClient(cfg.Server, cfg.Token, cfg.ClientID, cfg.DeviceName, timeout)
	client.SetFormat(format)
	client.SetLogger(logger)
	return client, cfg, dir, nil
}

// getServerClient is getClient for commands that talk to a media server.
func getServerClient() (*api.Client, *config.Config, string, error) {
	client, cfg, dir, err := getClient(false)
	if err != nil {
		return nil, nil, "", err
	}
	if err := cfg.ValidateServer(); err != nil {
		return nil, nil, "", exitError(2, err)
	}
	return client, cfg, dir, nil
}

func serverFromInventory(dir, ref string) (string, error) {
	db, err := store.Open(dir)
	if err != nil {
		return "", err
	}
	defer db.Close()

	d, err := db.FindDevice(ref)
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", exitError(2, fmt.Errorf("device %q is not in the inventory. Run 'plexctl devices list'", ref))
	}
	if !d.HasRole("server") || len(d.Connections) == 0 {
		return "", exitError(2, fmt.Errorf("device %q is not a reachable server", d.Name))
	}
	logger.Debug("resolved server from inventory", "device", d.Name, "url", d.Connections[0])
	return config.NormalizeServerURL(d.Connections[0]), nil
}
