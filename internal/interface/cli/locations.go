package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var locationsRegion string

var locationsCmd = &cobra.Command{
	Use:     "locations",
	Aliases: []string{"locs"},
	Short:   "List knowledge base locations",
	Long: `List every location in the knowledge base with its type, region and the
number of sessions that mention it.

Examples:
  chronicler locations
  chronicler locations --region sandpoint`,
	RunE: runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.Flags().StringVar(&locationsRegion, "region", "", "Only show locations in this region")
}

func runLocations(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	locs, err := a.db.ListLocations()
	if err != nil {
		return err
	}

	shown := 0
	for _, loc := range locs {
		if locationsRegion != "" && !strings.EqualFold(loc.Region, locationsRegion) {
			continue
		}
		shown++
		fmt.Printf("%s\n", loc.Name)
		meta := []string{}
		if loc.Type != "" {
			meta = append(meta, loc.Type)
		}
		if loc.Region != "" {
			meta = append(meta, loc.Region)
		}
		meta = append(meta, fmt.Sprintf("%d session(s)", len(loc.Sessions)))
		fmt.Printf("    %s\n", strings.Join(meta, " | "))
		if loc.Overview != "" {
			fmt.Printf("    %s\n", truncate(loc.Overview, 100))
		}
	}

	if shown == 0 {
		fmt.Println("No locations found.")
	}
	return nil
}
