package main

import (
	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show order history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, _ := cmd.Flags().GetString("status")
		if status != "" {
			return cli.print(cli.api.Orders.ByStatus(cmd.Context(), status))
		}
		return cli.print(cli.api.Orders.History(cmd.Context()))
	},
}

var ordersGetCmd = &cobra.Command{
	Use:   "get <order-id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := cli.api.Orders.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List access programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cli.api.Programs.List(cmd.Context())
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var programsPatientsCmd = &cobra.Command{
	Use:   "patients [program-id]",
	Short: "List patients, optionally for one program",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			out, err := cli.api.Programs.Patients(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(out)
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := cli.api.Programs.PatientsFor(cmd.Context(), id)
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

func init() {
	ordersCmd.Flags().String("status", "", "filter by status")
	ordersCmd.AddCommand(ordersGetCmd)

	programsCmd.AddCommand(programsPatientsCmd)
}
