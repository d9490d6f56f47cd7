package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List secret keys",
	Long:  `List all keys in the vault with their flags. Values are never shown.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := st.List(cmd.Context())
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("Vault is empty")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tINTERNAL\tAVAILABLE")
		available := 0
		for _, e := range entries {
			if e.Available {
				available++
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, yesNo(e.Internal), yesNo(e.Available))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d keys, %d available\n", len(entries), available)
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
