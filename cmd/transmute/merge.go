// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge PDF files into a single document",
	Long: `Merge combines two or more PDF files into one, preserving page order.
Without --output the result is written as merged.pdf next to the first input.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	porcelain, _ := cmd.Flags().GetBool("porcelain")

	gw, err := buildGateway(protocolWriter(porcelain))
	if err != nil {
		return err
	}

	out, err := gw.Merge(args, output)
	if err != nil {
		return err
	}
	if !porcelain {
		fmt.Fprintf(os.Stdout, "merged %d files into %s\n", len(args), out)
	}
	return nil
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "", "output PDF path (default: merged.pdf next to the first input)")
	mergeCmd.Flags().Bool("porcelain", false, "emit machine-readable protocol lines on stdout")

	rootCmd.AddCommand(mergeCmd)
}
