package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	milestonesCmd := &cobra.Command{Use: "milestones", Short: "Milestone operations"}

	listCmd := &cobra.Command{
		Use:   "list EVENT_ID",
		Short: "List an event's milestones, soonest target first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/events/%s/milestones", apiFlag, args[0])
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	milestonesCmd.AddCommand(listCmd)

	rootCmd.AddCommand(milestonesCmd)
}
