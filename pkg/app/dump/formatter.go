package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-dex/internal/services"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// FormatOutput writes dump results to w in the requested format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "text", "table":
		return formatText(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatJSON formats results as JSON
func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats results as YAML
func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}

// formatText writes every file as a sequence of titled sections
func formatText(w io.Writer, response *Response) error {
	for i := range response.Files {
		f := &response.Files[i]
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "=== %s ===\n", f.Path)

		if f.Header != nil {
			writeHeader(w, f.Header, f.Validation)
		}
		if len(f.Map) > 0 {
			writeMap(w, f.Map)
		}
		if f.Strings != nil {
			writeStrings(w, f.Strings)
		}
		if f.Types != nil {
			writeTypes(w, f.Types)
		}
		if f.Protos != nil {
			writeProtos(w, f.Protos)
		}
		if f.Fields != nil {
			writeReferences(w, "Fields", f.Fields)
		}
		if f.Methods != nil {
			writeReferences(w, "Methods", f.Methods)
		}
		for _, c := range f.Classes {
			writeClass(w, c)
		}
		if f.Error != "" {
			fmt.Fprintf(w, "Error: %s\n", f.Error)
		}
	}

	if len(response.Files) > 1 {
		fmt.Fprintf(w, "\nProcessed %d files, %d failed\n", len(response.Files), response.Failed)
	}
	return nil
}

func hexDec(v uint32) string {
	return fmt.Sprintf("%8X(%d)", v, v)
}

func spacedHex(s string) string {
	var parts []string
	for i := 0; i+2 <= len(s); i += 2 {
		parts = append(parts, s[i:i+2])
	}
	return strings.Join(parts, " ")
}

func writeHeader(w io.Writer, h *HeaderInfo, v *ValidationInfo) {
	fmt.Fprintln(w, "Header:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, " Magic:\t%s   (%s)\n", spacedHex(h.Magic), types.MagicDisplay)
	checksum := fmt.Sprintf("%08X", h.Checksum)
	if v != nil {
		if v.ChecksumVerified {
			checksum += " (verified)"
		} else {
			checksum += " (not checked)"
		}
	}
	fmt.Fprintf(tw, " Checksum:\t%s\n", checksum)
	signature := strings.ToUpper(h.Signature)
	if v != nil {
		signature += " (" + v.Signature + ")"
	}
	fmt.Fprintf(tw, " Signature:\t%s\n", signature)
	fmt.Fprintf(tw, " File Size:\t%s bytes\n", hexDec(h.FileSize))
	if v != nil && !v.FileSizeMatches {
		fmt.Fprintf(tw, " Actual Size:\t%d bytes (mismatch)\n", v.ActualSize)
	}
	fmt.Fprintf(tw, " Header Size:\t%s bytes\n", hexDec(h.HeaderSize))
	fmt.Fprintf(tw, " Endian Tag:\t%s (%08X)\n", h.Endian, h.EndianTag)
	fmt.Fprintf(tw, " Link Size:\t%s\n", hexDec(h.LinkSize))
	fmt.Fprintf(tw, " Link Offset:\t%s\n", hexDec(h.LinkOff))
	fmt.Fprintf(tw, " Map Offset:\t%s\n", hexDec(h.MapOff))
	fmt.Fprintf(tw, " String ID Size:\t%s\n", hexDec(h.StringIDsSize))
	fmt.Fprintf(tw, " String ID Offset:\t%s\n", hexDec(h.StringIDsOff))
	fmt.Fprintf(tw, " Type ID Size:\t%s\n", hexDec(h.TypeIDsSize))
	fmt.Fprintf(tw, " Type ID Offset:\t%s\n", hexDec(h.TypeIDsOff))
	fmt.Fprintf(tw, " Method Proto Size:\t%s\n", hexDec(h.ProtoIDsSize))
	fmt.Fprintf(tw, " Method Proto Offset:\t%s\n", hexDec(h.ProtoIDsOff))
	fmt.Fprintf(tw, " Field ID Size:\t%s\n", hexDec(h.FieldIDsSize))
	fmt.Fprintf(tw, " Field ID Offset:\t%s\n", hexDec(h.FieldIDsOff))
	fmt.Fprintf(tw, " Method ID Size:\t%s\n", hexDec(h.MethodIDsSize))
	fmt.Fprintf(tw, " Method ID Offset:\t%s\n", hexDec(h.MethodIDsOff))
	fmt.Fprintf(tw, " Class Define Size:\t%s\n", hexDec(h.ClassDefsSize))
	fmt.Fprintf(tw, " Class Define Offset:\t%s\n", hexDec(h.ClassDefsOff))
	fmt.Fprintf(tw, " Data Size:\t%s\n", hexDec(h.DataSize))
	fmt.Fprintf(tw, " Data Offset:\t%s\n", hexDec(h.DataOff))
}

func writeMap(w io.Writer, items []MapEntry) {
	fmt.Fprintln(w, "Map:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, " TYPE\tCODE\tSIZE\tOFFSET\n")
	for _, it := range items {
		fmt.Fprintf(tw, " %s\t0x%04x\t%d\t0x%x\n", it.Type, it.Code, it.Size, it.Offset)
	}
}

func writeStrings(w io.Writer, entries []services.StringEntry) {
	fmt.Fprintln(w, "Strings:")
	for _, e := range entries {
		fmt.Fprintf(w, " %2d(%8X):\t\"%s\"\n", e.Index, e.Offset, e.Value)
	}
}

func writeTypes(w io.Writer, entries []services.TypeEntry) {
	fmt.Fprintln(w, "Types:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	for _, e := range entries {
		name := e.Name
		if e.Error != "" {
			name = "<" + e.Error + ">"
		}
		fmt.Fprintf(tw, " %2d(idx: %4d)\t%s\t%s\n", e.Index, e.DescriptorIdx, e.Descriptor, name)
	}
}

func writeProtos(w io.Writer, entries []services.ProtoEntry) {
	fmt.Fprintln(w, "Protos:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	for _, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(tw, " %2d\t<%s>\n", e.Index, e.Error)
			continue
		}
		fmt.Fprintf(tw, " %2d\t%s\t%s (%s)\n", e.Index, e.Shorty, e.ReturnType, strings.Join(e.Parameters, ", "))
	}
}

func writeReferences(w io.Writer, title string, entries []services.ReferenceEntry) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(w, " %2d <%s>\n", e.Index, e.Error)
			continue
		}
		fmt.Fprintf(w, " %2d %s\n", e.Index, e.Reference)
	}
}

func writeClass(w io.Writer, c *services.ClassReport) {
	fmt.Fprintf(w, "Class #%d:\n", c.Index)
	fmt.Fprintf(w, "name: %s\n", c.Name)
	if len(c.Flags) > 0 {
		fmt.Fprintf(w, "flag: %s\n", strings.Join(c.Flags, " "))
	}
	if c.Superclass != "" {
		fmt.Fprintf(w, "super: %s\n", c.Superclass)
	}
	if len(c.Interfaces) > 0 {
		fmt.Fprintf(w, "interface: %s\n", strings.Join(c.Interfaces, ", "))
	}
	if c.SourceFile != "" {
		fmt.Fprintf(w, "source: %s\n", c.SourceFile)
	}

	if cd := c.ClassData; cd != nil && cd.Present {
		sections := []types.ClassDataSection{
			types.SectionStaticFields,
			types.SectionInstanceFields,
			types.SectionDirectMethods,
			types.SectionVirtualMethods,
		}
		for _, s := range sections {
			members := cd.Section(s)
			if len(members) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s:\n", s)
			for _, m := range members {
				fmt.Fprintf(w, "  %s\n", m)
			}
		}
	}

	if c.Error != "" {
		fmt.Fprintf(w, "error: %s\n", c.Error)
	}
}
