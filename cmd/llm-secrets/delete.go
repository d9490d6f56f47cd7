package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llmsecrets/llm-secrets/pkg/mask"
)

var deleteForce bool

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip the confirmation prompt")
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a secret from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key := args[0]

		if !deleteForce {
			masked, length, err := st.Peek(ctx, key, mask.DefaultReveal, true)
			if err != nil {
				return err
			}
			if length == 0 {
				masked = "(empty)"
			}
			fmt.Printf("Delete %s = %s? Type 'yes' to confirm: ", key, masked)
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				fmt.Println("Aborted")
				return nil
			}
			if strings.TrimSpace(line) != "yes" {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := st.Delete(ctx, key); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", key)
		return nil
	},
}
