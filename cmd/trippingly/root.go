package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/trippingly/go-speech-backend/internal/client"
	"github.com/trippingly/go-speech-backend/internal/sysutil"
)

// commandContext carries the persistent flags and lazily opens the session
// shared by all subcommands.
type commandContext struct {
	serverFlag   *string
	tokenFlag    *string
	userFlag     *string
	stateDirFlag *string

	sess *client.Session
}

// session opens (once) the client session from flags and environment.
func (c *commandContext) session() (*client.Session, error) {
	if c.sess != nil {
		return c.sess, nil
	}

	server := sysutil.FirstNonEmpty(*c.serverFlag, os.Getenv("TRIPPINGLY_SERVER"), "http://localhost:8080")
	token := sysutil.FirstNonEmpty(*c.tokenFlag, os.Getenv("TRIPPINGLY_TOKEN"))
	user := sysutil.FirstNonEmpty(*c.userFlag, os.Getenv("TRIPPINGLY_USER"), "demo-user")
	stateDir := sysutil.FirstNonEmpty(*c.stateDirFlag, os.Getenv("TRIPPINGLY_STATE_DIR"))

	if token == "" {
		return nil, errors.New("no token: pass --token, set TRIPPINGLY_TOKEN, or run `trippingly login`")
	}

	sess, err := client.NewSession(server, token, user, stateDir)
	if err != nil {
		return nil, err
	}
	c.sess = sess
	return sess, nil
}

func newRootCommand() *cobra.Command {
	var serverFlag, tokenFlag, userFlag, stateDirFlag string

	ctx := &commandContext{
		serverFlag:   &serverFlag,
		tokenFlag:    &tokenFlag,
		userFlag:     &userFlag,
		stateDirFlag: &stateDirFlag,
	}

	rootCmd := &cobra.Command{
		Use:           "trippingly",
		Short:         "Trippingly speech annotation CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Backend base URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Bearer token (default $TRIPPINGLY_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User ID for local bookkeeping (default $TRIPPINGLY_USER)")
	rootCmd.PersistentFlags().StringVar(&stateDirFlag, "state-dir", "", "Local state directory (default ~/.trippingly)")

	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newAnnotateCommand(ctx))
	rootCmd.AddCommand(newAnnotationsCommand(ctx))
	rootCmd.AddCommand(newToggleCommand(ctx))

	return rootCmd
}
