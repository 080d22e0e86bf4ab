package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/julianfbeck/plex-cli/internal/config"
	"github.com/julianfbeck/plex-cli/internal/mediacontainer"
	"github.com/julianfbeck/plex-cli/internal/store"
	"github.com/julianfbeck/plex-cli/internal/ui"
	"github.com/spf13/cobra"
)

var (
	devicesCached      bool
	devicesRole        string
	devicesInteractive bool
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Devices registered with your Plex account",
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List account devices and refresh the local inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := loadDevices(!devicesCached)
		if err != nil {
			return err
		}
		devices = filterRole(devices, devicesRole)

		if jsonOutput {
			outputJSON(devices)
			return nil
		}
		if plainOutput {
			for _, d := range devices {
				fmt.Printf("%s\t%s\t%s\t%s\n", d.ClientIdentifier, d.Name, d.Product, strings.Join(d.Provides, ","))
			}
			return nil
		}
		if len(devices) == 0 {
			printInfo("No devices\n")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPRODUCT\tPLATFORM\tPROVIDES\tLAST SEEN\tCLIENT ID")
		for _, d := range devices {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", d.Name, d.Product, d.Platform, strings.Join(d.Provides, ","), lastSeen(d.LastSeenAt), d.ClientIdentifier)
		}
		return w.Flush()
	},
}

var devicesShowCmd = &cobra.Command{
	Use:   "show <client-identifier|name>",
	Short: "Show one device from the inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, dir, err := getClient(false)
		if err != nil {
			return err
		}
		d, err := findDevice(dir, args[0])
		if err != nil {
			return err
		}
		if d == nil {
			// Not cached yet; refresh once from the account.
			if _, err := loadDevices(true); err != nil {
				return err
			}
			if d, err = findDevice(dir, args[0]); err != nil {
				return err
			}
		}
		if d == nil {
			return exitError(2, fmt.Errorf("device %q not found", args[0]))
		}

		if jsonOutput {
			outputJSON(d)
			return nil
		}
		if plainOutput {
			for _, uri := range d.Connections {
				fmt.Printf("%s\t%s\n", d.ClientIdentifier, uri)
			}
			return nil
		}
		printDevice(*d)
		return nil
	},
}

var devicesSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a device; picking a server makes it the default",
	RunE: func(cmd *cobra.Command, args []string) error {
		if noInput {
			return exitError(2, fmt.Errorf("interactive selection disabled by --no-input"))
		}
		devices, err := loadDevices(false)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			if devices, err = loadDevices(true); err != nil {
				return err
			}
		}
		devices = filterRole(devices, devicesRole)
		if len(devices) == 0 {
			printInfo("No devices\n")
			return nil
		}

		options := make([]ui.Option, 0, len(devices))
		for _, d := range devices {
			options = append(options, ui.Option{
				ID:     d.ClientIdentifier,
				Name:   d.Name,
				Detail: deviceLabel(d),
			})
		}

		var chosen *ui.Option
		if devicesInteractive {
			chosen, err = ui.Pick("Plex devices", options)
		} else {
			chosen, err = ui.PromptSelect(os.Stdin, os.Stdout, "Select a device:", options)
		}
		if err != nil {
			return exitError(2, err)
		}

		var picked store.Device
		for _, d := range devices {
			if d.ClientIdentifier == chosen.ID {
				picked = d
				break
			}
		}

		if picked.HasRole("server") && len(picked.Connections) > 0 {
			cfg, dir, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Server = config.NormalizeServerURL(picked.Connections[0])
			if err := config.Save(dir, cfg); err != nil {
				return err
			}
			printInfo("Default server set to %s (%s)\n", picked.Name, cfg.Server)
		}

		if jsonOutput {
			outputJSON(picked)
			return nil
		}
		fmt.Printf("%s\t%s\n", picked.ClientIdentifier, picked.Name)
		return nil
	},
}

func init() {
	devicesListCmd.Flags().BoolVar(&devicesCached, "cached", false, "Read the local inventory instead of plex.tv")
	devicesListCmd.Flags().StringVar(&devicesRole, "role", "", "Only devices providing this role, e.g. server or player")
	devicesSelectCmd.Flags().StringVar(&devicesRole, "role", "", "Only devices providing this role, e.g. server or player")
	devicesSelectCmd.Flags().BoolVarP(&devicesInteractive, "interactive", "i", false, "Full-screen picker with filtering")
	devicesCmd.AddCommand(devicesListCmd, devicesShowCmd, devicesSelectCmd)
	rootCmd.AddCommand(devicesCmd)
}

// loadDevices reads the inventory, first replacing it with the account's
// current devices when refresh is set.
func loadDevices(refresh bool) ([]store.Device, error) {
	client, _, dir, err := getClient(refresh)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if refresh {
		devices, err := client.Devices(ctx)
		if err != nil {
			return nil, apiError(err)
		}
		records := make([]store.Device, 0, len(devices))
		for _, d := range devices {
			records = append(records, toRecord(d))
		}
		if err := db.ReplaceDevices(records); err != nil {
			return nil, err
		}
		logger.Debug("device inventory refreshed", "devices", len(records))
	}
	return db.ListDevices("")
}

func findDevice(dir, ref string) (*store.Device, error) {
	db, err := store.Open(dir)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.FindDevice(ref)
}

func toRecord(d mediacontainer.Device) store.Device {
	details := d.Details()
	roles, _ := details.Provides.Get()
	rec := store.Device{
		ClientIdentifier: d.ClientIdentifier(),
		Name:             d.Name(),
		Product:          d.Product(),
		ProductVersion:   d.ProductVersion(),
		Platform:         d.Platform(),
		Provides:         roles,
		Connections:      d.ConnectionURIs(),
	}
	if seen, ok := details.LastSeenAt.Get(); ok {
		rec.LastSeenAt = seen
	}
	return rec
}

func filterRole(devices []store.Device, role string) []store.Device {
	if role == "" {
		return devices
	}
	var out []store.Device
	for _, d := range devices {
		if d.HasRole(role) {
			out = append(out, d)
		}
	}
	return out
}

func deviceLabel(d store.Device) string {
	label := d.Product
	if d.Platform != "" {
		label = fmt.Sprintf("%s on %s", label, d.Platform)
	}
	if len(d.Provides) > 0 {
		label = fmt.Sprintf("%s [%s]", label, strings.Join(d.Provides, ","))
	}
	return label
}

func lastSeen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func printDevice(d store.Device) {
	fmt.Printf("Name:        %s\n", d.Name)
	fmt.Printf("Client ID:   %s\n", d.ClientIdentifier)
	fmt.Printf("Product:     %s %s\n", d.Product, d.ProductVersion)
	fmt.Printf("Platform:    %s\n", d.Platform)
	fmt.Printf("Provides:    %s\n", strings.Join(d.Provides, ", "))
	fmt.Printf("Last seen:   %s\n", lastSeen(d.LastSeenAt))
	if len(d.Connections) == 0 {
		fmt.Printf("Connections: none\n")
		return
	}
	fmt.Printf("Connections:\n")
	for _, uri := range d.Connections {
		fmt.Printf("  %s\n", uri)
	}
}
