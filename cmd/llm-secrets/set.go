package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmsecrets/llm-secrets/pkg/input"
	"github.com/llmsecrets/llm-secrets/pkg/mask"
)

var (
	setValue      string
	setFromFile   string
	setDeleteFile bool
)

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().StringVar(&setValue, "value", "", "Secret value (visible in shell history; prefer interactive entry)")
	setCmd.Flags().StringVar(&setFromFile, "from-file", "", "Read the secret value from a file")
	setCmd.Flags().BoolVar(&setDeleteFile, "delete-file", false, "Delete the --from-file source after reading it")
}

var setCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store a secret value",
	Long: `Store a secret under the given key, creating or replacing it.

Without --value or --from-file the value is read interactively with hidden
input and a confirmation prompt, so the plaintext never appears in your
terminal scrollback.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key := args[0]

		var value []byte
		switch {
		case setValue != "":
			log.Warnf("--value exposes the secret to shell history and process listings")
			value = []byte(setValue)
		case setFromFile != "":
			var err error
			value, err = input.FromFile(setFromFile, setDeleteFile)
			if err != nil {
				return err
			}
		default:
			collector := input.NewCollector(&input.TerminalSource{})
			var err error
			value, err = collector.CollectConfirmed(
				fmt.Sprintf("Enter value for %s: ", key),
				"Confirm value: ",
			)
			if err != nil {
				return err
			}
		}

		if err := st.Set(ctx, key, string(value)); err != nil {
			return err
		}

		fmt.Printf("Stored %s = %s\n", key, mask.Mask(string(value), mask.DefaultReveal))
		return nil
	},
}
