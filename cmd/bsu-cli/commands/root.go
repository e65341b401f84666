package commands

import (
	"context"
	"fmt"
	"os"
	"studentbsu/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	debug      *bool
	jsonOutput *bool

	flagOverrides Overrides
)

func init() {
	flags := rootCmd.PersistentFlags()
	configPath = flags.String("config", "bsu.json5", "The config file to read, <name>.local.json5 is merged on top.")
	debug = flags.Bool("debug", false, "Enables debug logging.")
	jsonOutput = flags.Bool("json", false, "Prints results as JSON instead of tables.")

	flags.StringVar(&flagOverrides.Surname, "surname", "", "The student's surname.")
	flags.StringVar(&flagOverrides.StudentId, "student-id", "", "The student id (7 digits).")
	flags.StringVar(&flagOverrides.ContractNum, "contract", "", "The contract number.")
	flags.StringVar(&flagOverrides.CaptchaCommand, "captcha-cmd", "", "A program that receives the captcha image path and prints the digits.")
	flags.StringVar(&flagOverrides.DumpDir, "dump", "", "A directory to write every http exchange to.")
}

var rootCmd = &cobra.Command{
	Use:   "bsu-cli",
	Short: "bsu-cli is a CLI for reading grades and account information from student.bsu.by.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*debug)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
