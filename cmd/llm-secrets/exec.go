package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmsecrets/llm-secrets/pkg/runner"
)

var execInject []string

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringArrayVar(&execInject, "inject", nil, "Binding ENV_VAR=secret-key (can be repeated)")
	execCmd.MarkFlagRequired("inject")
}

var execCmd = &cobra.Command{
	Use:   "exec --inject ENV_VAR=key [--inject ...] -- command [args...]",
	Short: "Run a command with secrets as environment variables",
	Long: `Run a command with secret values injected into its environment.

Each --inject names an explicit ENV_VAR=secret-key pair. All bindings are
resolved before the command starts; if any key is missing nothing runs.
The child inherits this terminal's stdin, stdout and stderr, and its exit
code is passed through unchanged.

Examples:
  llm-secrets exec --inject OPENAI_API_KEY=openai-key -- python app.py
  llm-secrets exec --inject DB_PASS=db-password --inject DB_USER=db-user -- psql`,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dash := cmd.ArgsLenAtDash()
		if dash == -1 || dash >= len(args) {
			return fmt.Errorf("no command specified; use: llm-secrets exec --inject ENV=key -- command [args...]")
		}
		argv := args[dash:]

		bindings, err := runner.ParseBindings(execInject)
		if err != nil {
			return err
		}

		in := runner.New(st)
		in.Notify = func(envVar, key string) {
			log.Infof("injected %s (from %s)", envVar, key)
		}

		code, err := in.Run(cmd.Context(), bindings, argv)
		if err != nil {
			// Failures before the child ran keep the launch-failed code;
			// resolution errors map through the usual exit code table.
			if errors.Is(err, runner.ErrLaunchFailed) || errors.Is(err, runner.ErrNoCommand) {
				return &exitError{code: code, err: err}
			}
			return err
		}
		if code != 0 {
			return &exitError{code: code}
		}
		return nil
	},
}
