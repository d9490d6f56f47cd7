package main

import (
	"os"

	"github.com/spf13/cobra"
)

var getInternal bool

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().BoolVar(&getInternal, "internal", false, "Allow access to internal keys (leading underscore)")
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the raw secret value",
	Long: `Print the full secret value to stdout, without a trailing newline.

Intended for piping into other tools. Interactive use leaves the plaintext
in your scrollback; prefer 'peek' for checking a value by eye.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := st.Get(cmd.Context(), args[0], getInternal)
		if err != nil {
			return err
		}
		_, err = os.Stdout.WriteString(value)
		return err
	},
}
