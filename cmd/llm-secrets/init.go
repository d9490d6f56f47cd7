package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	initRecipient string
	initForce     bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initRecipient, "age-recipient", "", "Age public key to encrypt to (default: derived from the age key file)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing vault file")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new encrypted vault",
	Long: `Create the vault file and a .sops.yaml creation rule next to it.

The encryption recipient is derived from the age key file unless
--age-recipient is given. With --force an existing vault is replaced and
its secrets are lost.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if initForce && st.Exists() {
			log.Warnf("removing existing vault at %s", st.Path())
			if err := os.Remove(st.Path()); err != nil {
				return fmt.Errorf("failed to remove existing vault: %w", err)
			}
		}

		if err := st.Init(ctx, initRecipient); err != nil {
			return err
		}

		fmt.Printf("Vault created at %s\n", st.Path())
		fmt.Println("Add a secret with: llm-secrets set <key>")
		return nil
	},
}
