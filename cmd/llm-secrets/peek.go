package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmsecrets/llm-secrets/pkg/mask"
)

var (
	peekChars    int
	peekInternal bool
)

func init() {
	rootCmd.AddCommand(peekCmd)

	peekCmd.Flags().IntVarP(&peekChars, "chars", "c", mask.DefaultReveal, "Characters to reveal at each end")
	peekCmd.Flags().BoolVar(&peekInternal, "internal", false, "Allow access to internal keys (leading underscore)")
}

var peekCmd = &cobra.Command{
	Use:   "peek <key>",
	Short: "Show a masked preview of a secret",
	Long: `Show a secret in masked form, e.g. 'sk-1*****7890', plus its length.

Safe to run with an assistant watching the terminal: the hidden middle is
never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		masked, length, err := st.Peek(cmd.Context(), args[0], peekChars, peekInternal)
		if err != nil {
			return err
		}
		if length == 0 {
			fmt.Printf("%s = (empty)\n", args[0])
			return nil
		}
		fmt.Printf("%s = %s (%d chars)\n", args[0], masked, length)
		return nil
	},
}
