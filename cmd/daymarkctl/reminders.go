package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	remindersCmd := &cobra.Command{Use: "reminders", Short: "Reminder operations"}

	var eventFlag string

	// add
	var kind, at, rule string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a reminder to an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventFlag == "" {
				return fmt.Errorf("--event required")
			}
			if at == "" {
				return fmt.Errorf("--at required")
			}
			payload := map[string]interface{}{
				"kind":          kind,
				"scheduledTime": at,
			}
			if rule != "" {
				payload["recurrenceRule"] = rule
			}
			url := fmt.Sprintf("%s/api/events/%s/reminders", apiFlag, eventFlag)
			data, err := doPostJSON(url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&eventFlag, "event", "e", "", "Event ID (required)")
	addCmd.Flags().StringVarP(&kind, "kind", "k", "one_off", "Reminder kind: one_off|recurring")
	addCmd.Flags().StringVarP(&at, "at", "t", "", "Fire instant, RFC 3339 (required)")
	addCmd.Flags().StringVarP(&rule, "rule", "r", "", "Recurrence rule: daily|weekly|monthly|yearly (recurring only)")
	_ = addCmd.MarkFlagRequired("event")
	_ = addCmd.MarkFlagRequired("at")
	remindersCmd.AddCommand(addCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders for an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventFlag == "" {
				return fmt.Errorf("--event required")
			}
			url := fmt.Sprintf("%s/api/events/%s/reminders", apiFlag, eventFlag)
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&eventFlag, "event", "e", "", "Event ID (required)")
	_ = listCmd.MarkFlagRequired("event")
	remindersCmd.AddCommand(listCmd)

	// remove
	removeCmd := &cobra.Command{
		Use:   "remove REMINDER_ID",
		Short: "Remove a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventFlag == "" {
				return fmt.Errorf("--event required")
			}
			url := fmt.Sprintf("%s/api/events/%s/reminders/%s", apiFlag, eventFlag, args[0])
			if err := doDelete(url); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "removed %s\n", args[0])
			return nil
		},
	}
	removeCmd.Flags().StringVarP(&eventFlag, "event", "e", "", "Event ID (required)")
	_ = removeCmd.MarkFlagRequired("event")
	remindersCmd.AddCommand(removeCmd)

	rootCmd.AddCommand(remindersCmd)
}
