package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianfbeck/plex-cli/internal/api"
	"github.com/julianfbeck/plex-cli/internal/mediacontainer"
	"github.com/julianfbeck/plex-cli/internal/store"
	"github.com/spf13/cobra"
)

var (
	waitDeadline        time.Duration
	waitInterval        time.Duration
	waitForSettings     bool
	errSettingsNotReady = errors.New("server has not reported AcceptedEULA yet")
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Inspect a Plex Media Server",
}

var serverInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show server identity, version and capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, dir, err := getServerClient()
		if err != nil {
			return err
		}

		info, err := client.ServerInfo(ctx)
		if err != nil {
			return apiError(err)
		}

		prev, err := recordServerCheck(dir, cfg.Server, info)
		if err != nil {
			logger.Warn("could not record server check", "err", err)
		}

		if jsonOutput {
			outputJSON(info)
			return nil
		}
		if plainOutput {
			fmt.Printf("%s\t%s\t%s\t%s\n", info.MachineIdentifier, info.Name(), info.Version.Wire(), info.Platform)
			return nil
		}

		printServerInfo(info)
		if note := versionChange(prev, info.Version); note != "" {
			printInfo("\n%s\n", note)
		}
		return nil
	},
}

var serverWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until the server answers",
	Long: `Poll the server root until it returns a valid response.

With --wait-for-settings the server's preferences must also report the
AcceptedEULA setting, which a freshly started server publishes last.
Exits with code 5 when the deadline passes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, _, err := getServerClient()
		if err != nil {
			return err
		}

		var info mediacontainer.ServerInfo
		attempts := 0
		start := time.Now()
		err = api.WaitUntil(func(ctx context.Context) error {
			attempts++
			got, err := client.ServerInfo(ctx)
			if err != nil {
				logger.Debug("server not ready", "attempt", attempts, "err", err)
				return err
			}
			if waitForSettings {
				if err := settingsReady(ctx, client); err != nil {
					logger.Debug("settings not ready", "attempt", attempts, "err", err)
					return err
				}
			}
			info = got
			return nil
		}, waitInterval, waitDeadline)
		if err != nil {
			return apiError(fmt.Errorf("waiting for %s: %w", cfg.Server, err))
		}

		elapsed := time.Since(start).Round(time.Millisecond)
		if jsonOutput {
			outputJSON(map[string]interface{}{
				"server":            cfg.Server,
				"machineIdentifier": info.MachineIdentifier,
				"version":           info.Version,
				"attempts":          attempts,
				"elapsed":           elapsed.String(),
			})
			return nil
		}
		printInfo("%s is up (%s, version %s) after %s\n", info.Name(), cfg.Server, info.Version, elapsed)
		return nil
	},
}

func init() {
	serverWaitCmd.Flags().DurationVar(&waitDeadline, "deadline", 30*time.Second, "Give up after this long")
	serverWaitCmd.Flags().DurationVar(&waitInterval, "interval", time.Second, "Time between attempts")
	serverWaitCmd.Flags().BoolVar(&waitForSettings, "wait-for-settings", false, "Also wait for the server preferences to be published")
	serverCmd.AddCommand(serverInfoCmd, serverWaitCmd)
	rootCmd.AddCommand(serverCmd)
}

func settingsReady(ctx context.Context, client *api.Client) error {
	prefs, err := client.Preferences(ctx)
	if err != nil {
		return err
	}
	if _, ok := prefs.Setting("AcceptedEULA"); !ok {
		return errSettingsNotReady
	}
	return nil
}

func printServerInfo(info mediacontainer.ServerInfo) {
	fmt.Printf("Name:        %s\n", info.Name())
	fmt.Printf("Machine ID:  %s\n", info.MachineIdentifier)
	fmt.Printf("Version:     %s\n", info.Version)
	fmt.Printf("Platform:    %s %s\n", info.Platform, info.PlatformVersion)
	fmt.Printf("Multiuser:   %s\n", optionalYesNo(info.Multiuser))
	fmt.Printf("Signed in:   %s\n", optionalYesNo(info.MyPlex))
	fmt.Printf("Transcoder:  video=%s audio=%s photo=%s\n", yesNo(bool(info.TranscoderVideo)), yesNo(bool(info.TranscoderAudio)), yesNo(bool(info.TranscoderPhoto)))
	if updated, ok := info.UpdatedAt.Get(); ok {
		fmt.Printf("Updated:     %s\n", updated.Local().Format(time.RFC1123))
	}
	if diag, ok := info.Diagnostics.Get(); ok && len(diag) > 0 {
		fmt.Printf("Diagnostics: %s\n", strings.Join(diag, ", "))
	}

	keys := make([]string, 0, len(info.Features))
	for _, d := range info.Directories() {
		keys = append(keys, d.Key)
	}
	fmt.Printf("Features:    %s\n", strings.Join(keys, ", "))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func optionalYesNo(v mediacontainer.OptionalBool) string {
	b, ok := v.Get()
	if !ok {
		return "unknown"
	}
	return yesNo(b)
}

// recordServerCheck stores what was just seen and returns the previous
// check, if any.
func recordServerCheck(dir, url string, info mediacontainer.ServerInfo) (*store.ServerCheck, error) {
	db, err := store.Open(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	prev, err := db.GetServerCheck(info.MachineIdentifier)
	if err != nil {
		return nil, err
	}
	name := ""
	if info.FriendlyName != nil {
		name = *info.FriendlyName
	}
	err = db.RecordServerCheck(&store.ServerCheck{
		MachineIdentifier: info.MachineIdentifier,
		FriendlyName:      name,
		Version:           info.Version.Wire(),
		URL:               url,
	})
	return prev, err
}

func versionChange(prev *store.ServerCheck, current mediacontainer.Version) string {
	if prev == nil {
		return ""
	}
	before, err := mediacontainer.ParseVersion(prev.Version)
	if err != nil {
		return ""
	}
	switch before.Compare(current) {
	case -1:
		return fmt.Sprintf("Upgraded from %s since %s", before, prev.CheckedAt.Local().Format(time.DateTime))
	case 1:
		return fmt.Sprintf("Downgraded from %s since %s", before, prev.CheckedAt.Local().Format(time.DateTime))
	}
	return ""
}
