package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/julianfbeck/plex-cli/internal/mediacontainer"
	"github.com/spf13/cobra"
)

var librariesCmd = &cobra.Command{
	Use:     "libraries",
	Aliases: []string{"library", "sections"},
	Short:   "List the server's library sections",
}

var librariesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library sections",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, _, err := getServerClient()
		if err != nil {
			return err
		}

		sections, err := client.LibrarySections(ctx)
		if err != nil {
			return apiError(err)
		}
		dirs := sections.Directories()

		if jsonOutput {
			outputJSON(dirs)
			return nil
		}
		if plainOutput {
			for _, d := range dirs {
				fmt.Printf("%s\t%s\t%s\t%d\n", d.Key, d.Type, d.Title, len(d.Location))
			}
			return nil
		}
		if len(dirs) == 0 {
			printInfo("No library sections\n")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tTYPE\tTITLE\tAGENT\tLOCATIONS\tUPDATED")
		for _, d := range dirs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", d.Key, d.Type, d.Title, d.Agent, len(d.Location), d.UpdatedAt.Local().Format(time.DateOnly))
		}
		return w.Flush()
	},
}

var librariesShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show one library section and its locations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, _, err := getServerClient()
		if err != nil {
			return err
		}

		sections, err := client.LibrarySections(ctx)
		if err != nil {
			return apiError(err)
		}
		d, ok := sections.Section(args[0])
		if !ok {
			return exitError(2, fmt.Errorf("no library section with key %q", args[0]))
		}

		if jsonOutput {
			outputJSON(d)
			return nil
		}
		if plainOutput {
			for _, loc := range d.Locations() {
				fmt.Printf("%s\t%d\t%s\n", d.Key, loc.ID, loc.Path)
			}
			return nil
		}
		printSection(d)
		return nil
	},
}

func init() {
	librariesCmd.AddCommand(librariesListCmd, librariesShowCmd)
	rootCmd.AddCommand(librariesCmd)
}

func printSection(d mediacontainer.Directory) {
	fmt.Printf("Title:     %s\n", d.Title)
	fmt.Printf("Key:       %s\n", d.Key)
	fmt.Printf("Type:      %s\n", d.Type)
	fmt.Printf("UUID:      %s\n", d.UUID)
	fmt.Printf("Agent:     %s\n", d.Agent)
	fmt.Printf("Scanner:   %s\n", d.Scanner)
	fmt.Printf("Language:  %s\n", d.Language)
	fmt.Printf("Created:   %s\n", d.CreatedAt.Local().Format(time.DateTime))
	fmt.Printf("Updated:   %s\n", d.UpdatedAt.Local().Format(time.DateTime))
	if scanned, ok := d.ScannedAt.Get(); ok {
		fmt.Printf("Scanned:   %s\n", scanned.Local().Format(time.DateTime))
	}
	if bool(d.Refreshing) {
		fmt.Printf("Status:    refreshing\n")
	}

	locs := d.Locations()
	if len(locs) == 0 {
		fmt.Printf("Locations: none\n")
		return
	}
	fmt.Printf("Locations:\n")
	for _, loc := range locs {
		fmt.Printf("  %d  %s\n", loc.ID, loc.Path)
	}
}
