// Assets commands: list stored asset ids and collect unreferenced blobs.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Inspect and clean up stored assets",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored asset ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "assets list:", err)
			os.Exit(exitSysError)
		}
		defer s.Detach()

		ids, err := s.ListIDs(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "list assets:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			out, err := json.MarshalIndent(map[string]any{"ids": ids}, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var assetsGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete assets the invitation no longer references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "assets gc:", err)
			os.Exit(exitSysError)
		}
		defer s.Detach()

		ctx := cmd.Context()
		inv, _, err := s.Load(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load invitation:", err)
			os.Exit(exitSysError)
		}
		keep := inv.AssetIDs()

		ids, err := s.ListIDs(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list assets:", err)
			os.Exit(exitSysError)
		}

		removed := 0
		for _, id := range ids {
			if keep[id] {
				continue
			}
			if err := s.Delete(ctx, id); err != nil {
				fmt.Fprintf(os.Stderr, "delete %s: %v\n", id, err)
				continue
			}
			removed++
		}
		fmt.Printf("removed %d of %d asset(s), %d referenced\n", removed, len(ids), len(keep))
		return nil
	},
}

func init() {
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsGCCmd)
}
