// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/savagelysubtle/transmute/internal/batch"
	"github.com/savagelysubtle/transmute/internal/gateway"
	"github.com/savagelysubtle/transmute/internal/merge"
	"github.com/savagelysubtle/transmute/internal/progress"
	"github.com/savagelysubtle/transmute/internal/protocol"
	"github.com/savagelysubtle/transmute/internal/scan"
	"github.com/savagelysubtle/transmute/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a single document to another format",
	Long: `Convert transforms one document into another format. The conversion type
is "<source>2<target>", e.g. pdf2md, md2pdf, html2md, eml2md, pdf2editable.
Run "transmute formats" to list the registered conversions.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	conversionType, _ := cmd.Flags().GetString("type")
	output, _ := cmd.Flags().GetString("output")
	porcelain, _ := cmd.Flags().GetBool("porcelain")
	rawOptions, _ := cmd.Flags().GetStringSlice("option")

	options, err := parseOptions(rawOptions)
	if err != nil {
		return err
	}

	gw, err := buildGateway(protocolWriter(porcelain))
	if err != nil {
		return err
	}

	out, err := gw.ConvertSingle(types.ConversionRequest{
		Type:    conversionType,
		Inputs:  args,
		Output:  output,
		Options: options,
	})
	if err != nil {
		return err
	}
	if !porcelain {
		fmt.Fprintf(os.Stdout, "converted: %s\n", out)
	}
	return nil
}

// parseOptions turns repeated --option key=value flags into a converter
// option map. Bare keys become boolean true.
func parseOptions(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	options := make(map[string]any, len(raw))
	for _, kv := range raw {
		key, value, found := strings.Cut(kv, "=")
		if key == "" {
			return nil, types.Validationf("invalid option %q: expected key=value", kv)
		}
		if !found {
			options[key] = true
			continue
		}
		switch value {
		case "true":
			options[key] = true
		case "false":
			options[key] = false
		default:
			options[key] = value
		}
	}
	return options, nil
}

// protocolWriter selects where protocol lines go. In porcelain mode they are
// the product and go to stdout; otherwise they are discarded and the command
// prints human output itself.
func protocolWriter(porcelain bool) io.Writer {
	if porcelain {
		return os.Stdout
	}
	return io.Discard
}

// buildGateway assembles the full conversion pipeline from configuration.
func buildGateway(w io.Writer) (*gateway.Gateway, error) {
	cfg := appConfig()

	reg, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker(progress.DefaultMaxOperations)
	scanner := scan.New(cfg.Scan.Enabled, cfg.Scan.ClamdAddress)
	executor := batch.NewExecutor(reg, tracker, scanner, cfg.Conversion, os.Stderr)
	emitter := protocol.NewEmitter(w)

	return gateway.New(reg, executor, &merge.PDFMerger{}, emitter), nil
}

func init() {
	convertCmd.Flags().StringP("type", "t", "", "conversion type, e.g. pdf2md (required)")
	convertCmd.Flags().StringP("output", "o", "", "output file path (default: input name with new extension)")
	convertCmd.Flags().Bool("porcelain", false, "emit machine-readable protocol lines on stdout")
	convertCmd.Flags().StringSlice("option", nil, "converter option as key=value (repeatable)")
	convertCmd.MarkFlagRequired("type")

	rootCmd.AddCommand(convertCmd)
}
