// Show command: prints the stored invitation document.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkwed/linkwed/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the stored invitation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "show:", err)
			os.Exit(exitSysError)
		}
		defer s.Detach()

		inv, created, err := s.Load(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "load invitation:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			out, err := json.MarshalIndent(inv, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
			return nil
		}

		if created {
			fmt.Println("(freshly seeded default document)")
		}
		fmt.Printf("Couple:     %s\n", inv.Details.CoupleNames)
		fmt.Printf("Tagline:    %s\n", inv.Details.Tagline)
		fmt.Printf("Date:       %s %s\n", inv.Details.EventDate, inv.Details.EventTime)
		fmt.Printf("Venue:      %s\n", inv.Details.Venue)
		fmt.Printf("Address:    %s\n", inv.Details.Address)
		fmt.Printf("Location:   %.6f,%.6f\n", inv.Coordinates.Lng, inv.Coordinates.Lat)
		if inv.HeroImage != nil {
			fmt.Printf("Hero:       %s (%s)\n", inv.HeroImage.Name, inv.HeroImage.ID)
		}
		fmt.Printf("Gallery:    %d image(s)\n", len(inv.GalleryImages))
		for _, ref := range inv.GalleryImages {
			fmt.Printf("  %s (%s)\n", ref.Name, ref.ID)
		}
		switch inv.Music.Mode {
		case types.MusicModeCustom:
			fmt.Printf("Music:      custom %s (%s)\n", inv.Music.Name, inv.Music.ID)
		default:
			fmt.Printf("Music:      preset %s\n", inv.Music.ID)
		}
		fmt.Printf("Volume:     %.2f\n", inv.Volume)
		if len(inv.Details.Schedule) > 0 {
			fmt.Println("\nSchedule:")
			for _, item := range inv.Details.Schedule {
				fmt.Printf("  %s  %s: %s\n", item.Time, item.Label, item.Description)
			}
		}
		if !inv.UpdatedAt.IsZero() {
			fmt.Printf("\nUpdated:    %s\n", inv.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
