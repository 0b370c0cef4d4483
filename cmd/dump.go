package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-dex/pkg/app"
	"github.com/deploymenttheory/go-dex/pkg/app/dump"
)

var (
	// Section selection
	sections    dump.Sections
	allSections bool

	// Class selection
	className string
)

var dumpCmd = &cobra.Command{
	Use:   "dump [dex-file...]",
	Short: "Print header, pools and classes of dex files",
	Long: `Decode each file and print the selected sections. Without section
flags the header, string pool and every class are printed.

A file that fails to decode is reported and the remaining files are still
processed; the exit status is non-zero if any file failed.

Examples:
  # Header, strings and classes
  go-dex dump classes.dex

  # Everything, as JSON
  go-dex dump classes.dex --all -o json

  # One class from an APK
  go-dex dump app.apk --class com.example.MainActivity

  # Several files, continuing past failures
  go-dex dump a.dex b.dex.gz c.dex`,

	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(args)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	f := dumpCmd.Flags()
	f.BoolVar(&sections.Header, "header", false, "print the header and validation results")
	f.BoolVar(&sections.Map, "map", false, "print the map list")
	f.BoolVar(&sections.Strings, "strings", false, "print the string pool")
	f.BoolVar(&sections.Types, "types", false, "print the type pool")
	f.BoolVar(&sections.Protos, "protos", false, "print the proto pool")
	f.BoolVar(&sections.Fields, "fields", false, "print the field reference pool")
	f.BoolVar(&sections.Methods, "methods", false, "print the method reference pool")
	f.BoolVar(&sections.Classes, "classes", false, "print every class definition")
	f.BoolVarP(&allSections, "all", "a", false, "print every section")
	f.StringVarP(&className, "class", "c", "", "print only this class (dotted name or descriptor)")
	f.Bool("fix-virtual-count", true, "size the virtual method list by its own count")
	addDecodeFlags(dumpCmd)

	dumpCmd.MarkFlagsMutuallyExclusive("all", "class")
}

func runDump(paths []string) error {
	ctx := appCtx

	request := &dump.Request{
		Paths:     paths,
		Sections:  sections,
		ClassName: className,
		Options:   decodeOptions(ctx),
	}
	if allSections {
		request.Sections = dump.Sections{
			Header: true, Map: true, Strings: true, Types: true,
			Protos: true, Fields: true, Methods: true, Classes: true,
		}
	}

	response, err := dump.Handle(ctx, request)
	if err != nil {
		return err
	}

	if err := dump.FormatOutput(ctx.Stdout, response, ctx.OutputFormat); err != nil {
		return err
	}
	return batchError(response)
}

func batchError(response *dump.Response) error {
	if response.Failed == 0 {
		return nil
	}
	return app.NewError(app.ErrCodeBatchFailed,
		fmt.Sprintf("%d of %d files failed", response.Failed, len(response.Files)), nil)
}
