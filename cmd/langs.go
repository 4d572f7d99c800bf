package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List the known language profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := cfg.Registry()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tEXT\tALIASES\tCOMPILE\tRUN")
		for _, p := range registry.Profiles() {
			compile := p.Compile
			if compile == "" {
				compile = "-"
			}
			aliases := strings.Join(p.Aliases, ",")
			if aliases == "" {
				aliases = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Extension, aliases, compile, p.Run)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(langsCmd)
}
