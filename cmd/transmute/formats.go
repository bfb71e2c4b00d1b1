// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List registered conversions and their converters",
	RunE:  runFormats,
}

func runFormats(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	reg, err := newRegistry(appConfig())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reg.AvailableConversions())
	}

	conversions := reg.AvailableConversions()
	sources := make([]string, 0, len(conversions))
	for source := range conversions {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	fmt.Fprintf(os.Stdout, "%-12s  %-24s  %-8s  %s\n", "Conversion", "Converter", "Priority", "Description")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	total := 0
	for _, source := range sources {
		for _, target := range conversions[source] {
			for _, p := range reg.Converters(source, target) {
				desc := p.Description
				if len(desc) > 40 {
					desc = desc[:37] + "..."
				}
				fmt.Fprintf(os.Stdout, "%-12s  %-24s  %-8d  %s\n",
					source+"2"+target, p.Name, p.Priority, desc)
				total++
			}
		}
	}

	fmt.Fprintf(os.Stdout, "\n%d converters\n", total)
	return nil
}

func init() {
	formatsCmd.Flags().Bool("json", false, "output the conversion map as JSON")

	rootCmd.AddCommand(formatsCmd)
}
