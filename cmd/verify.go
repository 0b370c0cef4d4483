package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-dex/pkg/app/dump"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [dex-file...]",
	Short: "Check header magic, checksum and file size",
	Long: `Open each file, validate the header magic and Adler-32 checksum and
compare the declared file size with the actual one. No pools are listed.

The signature field is reported but not verified.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(args)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	addDecodeFlags(verifyCmd)
}

func runVerify(paths []string) error {
	ctx := appCtx

	request := &dump.Request{
		Paths:      paths,
		VerifyOnly: true,
		Options:    decodeOptions(ctx),
	}

	response, err := dump.Handle(ctx, request)
	if err != nil {
		return err
	}

	if ctx.OutputFormat != "text" {
		if err := dump.FormatOutput(ctx.Stdout, response, ctx.OutputFormat); err != nil {
			return err
		}
		return batchError(response)
	}

	if !ctx.Quiet {
		tw := tabwriter.NewWriter(ctx.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tSTATUS\tCHECKSUM\tSIZE\tSIGNATURE")
		for _, f := range response.Files {
			if f.Failed() {
				fmt.Fprintf(tw, "%s\tFAIL\t-\t-\t%s\n", f.Path, f.Error)
				continue
			}
			size := "ok"
			if !f.Validation.FileSizeMatches {
				size = fmt.Sprintf("mismatch (%d != %d)", f.Header.FileSize, f.Validation.ActualSize)
			}
			checksum := fmt.Sprintf("%08x", f.Header.Checksum)
			if !f.Validation.ChecksumVerified {
				checksum += " (skipped)"
			}
			fmt.Fprintf(tw, "%s\tOK\t%s\t%s\t%s\n", f.Path, checksum, size, f.Validation.Signature)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return batchError(response)
}
