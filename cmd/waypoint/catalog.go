package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [domain]",
	Short: "Show the planning domains and their questions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.Default()
		if len(args) == 0 {
			for _, name := range cat.Names() {
				d, _ := cat.Domain(name)
				fmt.Fprintf(os.Stdout, "%-8s quick=%d smart=%d  %s\n", name,
					len(d.Budget(domain.ModeQuick)), len(d.Budget(domain.ModeSmart)), strings.Join(d.Keywords, ", "))
			}
			return nil
		}
		d, ok := cat.Domain(args[0])
		if !ok {
			return fmt.Errorf("unknown domain %q", args[0])
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(d)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
