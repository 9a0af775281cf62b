package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ensureCmd = &cobra.Command{
	Use:     "ensure",
	Aliases: []string{"init"},
	Short:   "Create all declared indexes",
	Long: `Create every declared index in order, one at a time, then print the
index catalog of each collection. Existing identical indexes are left
untouched, so the command is safe to re-run. The first failure aborts
the run; indexes created before it are kept.`,
	Args: cobra.NoArgs,
	RunE: runEnsure,
}

func init() {
	rootCmd.AddCommand(ensureCmd)

	flags := ensureCmd.Flags()
	flags.Bool("report", true, "print the index catalog after provisioning")
	flags.Bool("lock", true, "hold the redis provisioning lock while running (requires redis.addr)")

	_ = viper.BindPFlag("provision.report", flags.Lookup("report"))
	_ = viper.BindPFlag("provision.lock", flags.Lookup("lock"))
}

func runEnsure(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	record, err := s.svc.Ensure(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d indexes declared, %d created\n", record.Declared, len(record.Created))

	if !GetConfig().Provision.Report {
		return nil
	}
	if err := s.svc.Report(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\n===== Index creation completed! =====")
	return nil
}
