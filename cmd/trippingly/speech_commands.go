package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trippingly/go-speech-backend/internal/auth"
)

// newLoginCommand issues a development token. The real deployment receives
// tokens from the external auth provider; this helper signs one locally
// with the shared JWT secret.
func newLoginCommand() *cobra.Command {
	var user string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Issue a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET must be set to issue a token")
			}
			token, err := auth.GenerateToken(user, secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.ErrOrStderr(), "export TRIPPINGLY_TOKEN=<token> to use it")
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "demo-user", "User ID to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <file.txt>",
		Short: "Upload a speech from a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.session()
			if err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}

			id, err := sess.Upload(cmd.Context(), name, string(content))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %q as %s\n", name, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Speech name (default: file name without extension)")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your speeches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.session()
			if err != nil {
				return err
			}

			speeches, err := sess.Speeches(cmd.Context())
			if err != nil {
				return err
			}
			if len(speeches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no speeches yet")
				return nil
			}

			rows := make([][]string, 0, len(speeches))
			for _, sp := range speeches {
				rows = append(rows, []string{
					sp.ID,
					sp.Name,
					fmt.Sprintf("%d", len(sp.Content)),
					sp.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "NAME", "BYTES", "UPDATED"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <speechId>",
		Short: "Print a speech with its annotations applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.session()
			if err != nil {
				return err
			}

			if raw {
				eng, _, err := sess.Open(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), eng.CleanText())
				return nil
			}

			out, err := sess.Render(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the clean text without annotations")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <speechId>",
		Short: "Delete a speech and its annotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.session()
			if err != nil {
				return err
			}
			if err := sess.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}
