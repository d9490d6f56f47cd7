package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend tooling and vault state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tools := backend.Status(ctx)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "sops installed\t%s\n", yesNo(tools.SopsInstalled))
		fmt.Fprintf(w, "age installed\t%s\n", yesNo(tools.AgeInstalled))
		fmt.Fprintf(w, "vault file\t%s\n", cfg.VaultFile)
		fmt.Fprintf(w, "vault exists\t%s\n", yesNo(st.Exists()))
		fmt.Fprintf(w, "age key file\t%s\n", cfg.AgeKeyFile)

		if st.Exists() && tools.Ready() {
			entries, err := st.List(ctx)
			if err != nil {
				return err
			}
			available := 0
			for _, e := range entries {
				if e.Available {
					available++
				}
			}
			fmt.Fprintf(w, "secrets\t%d (%d available)\n", len(entries), available)
		}
		return w.Flush()
	},
}
