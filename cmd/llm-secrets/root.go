package main

import (
	"github.com/spf13/cobra"

	"github.com/llmsecrets/llm-secrets/internal/logging"
	"github.com/llmsecrets/llm-secrets/pkg/config"
	"github.com/llmsecrets/llm-secrets/pkg/sops"
	"github.com/llmsecrets/llm-secrets/pkg/store"
)

const version = "0.1.0"

var (
	flagVaultFile string
	flagVerbose   bool
	flagDebug     bool

	cfg     config.Config
	backend sops.Backend
	st      *store.Store
	log     logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "llm-secrets",
	Short: "Local secret vault on top of sops and age",
	Long: `llm-secrets keeps credentials in a single sops/age encrypted file so you
can manage them from the terminal without full values appearing in your
scrollback, where an observing assistant would see them.

Values are entered with hidden input, displayed only in masked form, and
injected into child processes via explicit ENV_VAR=key bindings.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE resolves configuration and builds the store used by
	// every subcommand. The vault file itself is only touched lazily.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Resolve(flagVaultFile)
		if err != nil {
			return err
		}
		backend = sops.NewCLI(cfg.AgeKeyFile)
		st = store.New(cfg.VaultFile, backend)
		log = logging.Logger{Verbose: flagVerbose, Debug: flagDebug}
		log.Debugf("vault file: %s", cfg.VaultFile)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagVaultFile, "file", "f", "", "Vault file path (default: LLM_SECRETS_FILE or ~/.config/llm-secrets/secrets.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Debug output")
}
