package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sempr/localjudge/internal/config"
	"github.com/sempr/localjudge/pkg/models"
	"github.com/spf13/cobra"
)

// errCasesFailed makes the process exit non-zero without printing anything
// beyond the report itself.
var errCasesFailed = errors.New("not all test cases passed")

var (
	globalArgs models.GlobalArgs
	cfg        = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "localjudge",
	Short: "Check a competitive-programming solution against its recorded test cases",
	Long: `localjudge compiles and runs solution.<ext> in a problem directory against
every testcases/<n>/input.txt, compares the output with testcases/<n>/output.txt
and prints a per-case verdict with a summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(globalArgs.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
		level, _ := cfg.Level()
		if globalArgs.Debug {
			level = slog.LevelDebug
		}
		SetLevel(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, errCasesFailed) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalArgs.ConfigPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVar(&globalArgs.Debug, "debug", false, "enable debug logging")
}
