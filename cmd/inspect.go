package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"qindex/internal/model/questionnaire"
	"qindex/internal/service"
)

var listCmd = &cobra.Command{
	Use:   "list [collection...]",
	Short: "Print the index catalog of the managed collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.svc.Report(cmd.Context(), args...)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the live index catalog with the declared indexes",
	Long: `Compare each collection's index catalog with the declared indexes.
Exits non-zero when a declared index is missing, duplicated or has a
different unique option. Undeclared indexes are reported as warnings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		_, err = s.svc.Verify(cmd.Context())
		return err
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the declared indexes without connecting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.WritePlan(cmd.OutOrStdout(), questionnaire.Models()...)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last recorded provisioning run (requires redis.addr)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		record, err := s.svc.LastRun(cmd.Context())
		switch {
		case errors.Is(err, service.ErrNoRecordedRun):
			fmt.Fprintln(cmd.OutOrStdout(), "no recorded run")
			return nil
		case errors.Is(err, service.ErrNoRunStore):
			return fmt.Errorf("%w: set redis.addr", err)
		case err != nil:
			return err
		}

		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, verifyCmd, planCmd, statusCmd)
}
