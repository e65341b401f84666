package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"studentbsu/internal/components/osutil"
	"studentbsu/internal/scrapers/bsu"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(
		viewCommand("grades", "Prints the grades of every term.", "grades", (*bsu.Session).TermData, renderTerms),
		viewCommand("profile", "Prints name, faculty, course and average score.", "profile", (*bsu.Session).GeneralData, renderGeneral),
		viewCommand("debt", "Prints the outstanding payment and fine.", "payment information", (*bsu.Session).DebtData, renderDebt),
		viewCommand("credentials", "Prints the contract number and student id.", "credentials", (*bsu.Session).CredentialsData, renderCredentials),
		viewCommand("all", "Prints everything above.", "report", fetchReport, renderReport),
	)
}

func fetchReport(session *bsu.Session, ctx context.Context) (Report, error) {
	var report Report
	var err error
	report.Terms, err = session.TermData(ctx)
	if err != nil {
		return Report{}, err
	}
	report.General, err = session.GeneralData(ctx)
	if err != nil {
		return Report{}, err
	}
	report.Debt, err = session.DebtData(ctx)
	if err != nil {
		return Report{}, err
	}
	report.Credentials, err = session.CredentialsData(ctx)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// printResult writes `value` as JSON when --json is set and through `render`
// otherwise.
func printResult[T any](w io.Writer, asJson bool, value T, render func(io.Writer, T)) error {
	if asJson {
		return writeJSON(w, value)
	}
	render(w, value)
	return nil
}

func viewCommand[T any](
	use, short, what string,
	fetch func(*bsu.Session, context.Context) (T, error),
	render func(io.Writer, T),
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			session, shutdown := openSession(cmd.Context())
			value, err := fetch(session, cmd.Context())
			shutdown()
			if err != nil {
				osutil.Fatal(fmt.Sprintf("failed to fetch %s", what), err)
			}

			err = printResult(os.Stdout, *jsonOutput, value, render)
			if err != nil {
				osutil.Fatal("failed to print result", err)
			}
		},
	}
}
