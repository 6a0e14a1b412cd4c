package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/intellitip/internal/app"
	"go.trai.ch/intellitip/internal/ui/output"
)

// prettyWidth is the word wrap width of --pretty output when stdout is not a terminal.
const prettyWidth = 100

func (c *CLI) newHoverCmd() *cobra.Command {
	var (
		req    app.HoverRequest
		text   string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "hover",
		Short: "Print the hover documentation at a cursor position",
		Long: "Print the hover documentation at a zero-based line and column of a file.\n" +
			"Nothing is printed when the position has no documentation.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("text") {
				req.Text = &text
			}

			resp, err := c.app.Hover(cmd.Context(), req)
			if err != nil {
				return err
			}
			if !resp.Found {
				return nil
			}

			out := cmd.OutOrStdout()
			if pretty {
				return output.RenderMarkdown(out, resp.Markdown, output.Width(out, prettyWidth))
			}
			_, err = fmt.Fprintln(out, resp.Markdown)
			return err
		},
	}

	cmd.Flags().StringVarP(&req.File, "file", "f", "", "File containing the cursor")
	cmd.Flags().IntVarP(&req.Line, "line", "l", 0, "Zero-based line of the cursor")
	cmd.Flags().IntVarP(&req.Column, "column", "c", 0, "Zero-based column of the cursor")
	cmd.Flags().StringVar(&text, "text", "", "Line content to use instead of reading the file")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Render the Markdown for the terminal")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
