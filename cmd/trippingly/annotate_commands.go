package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	var occurrence int

	cmd := &cobra.Command{
		Use:   "annotate <speechId> <text> <emoji>",
		Short: "Replace a substring of the speech with an emoji",
		Long: "Replaces an occurrence of <text> in the speech's clean text with <emoji>.\n" +
			"When the text repeats, --occurrence selects which instance (1-based);\n" +
			"without it the first occurrence is used.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.session()
			if err != nil {
				return err
			}

			a, err := sess.Annotate(cmd.Context(), args[0], args[1], args[2], occurrence)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "annotated %q -> %s at byte %d (association %s)\n",
				a.OriginalText, a.Emoji, a.Position, a.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&occurrence, "occurrence", 0, "Which occurrence of the text to annotate (1-based)")
	return cmd
}

func newAnnotationsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "annotations <speechId>",
		Short: "List a speech's emoji associations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.session()
			if err != nil {
				return err
			}

			eng, st, err := sess.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			assocs := eng.Associations()
			if len(assocs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no annotations yet")
				return nil
			}

			rows := make([][]string, 0, len(assocs))
			for _, a := range assocs {
				showing := a.Emoji
				if eng.ShowOriginal(a.ID) {
					showing = "original"
				}
				mirrored := "no"
				if _, ok := st.RemoteIDs[a.ID]; ok {
					mirrored = "yes"
				}
				rows = append(rows, []string{
					a.ID,
					fmt.Sprintf("%d", a.Position),
					a.OriginalText,
					a.Emoji,
					showing,
					mirrored,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "POS", "TEXT", "EMOJI", "SHOWING", "MIRRORED"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <speechId> <associationId>",
		Short: "Flip an annotation between emoji and original text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.session()
			if err != nil {
				return err
			}

			showOriginal, err := sess.Toggle(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if showOriginal {
				fmt.Fprintln(cmd.OutOrStdout(), "now showing original text")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "now showing emoji")
			}
			return nil
		},
	}
}
