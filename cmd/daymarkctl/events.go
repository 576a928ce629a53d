package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	eventsCmd := &cobra.Command{Use: "events", Short: "Event operations"}

	// create
	var title, description, start, unit string
	var pinned bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || start == "" {
				return fmt.Errorf("--title and --start required")
			}
			payload := map[string]interface{}{
				"title":       title,
				"startTime":   start,
				"displayUnit": unit,
				"pinned":      pinned,
			}
			if description != "" {
				payload["description"] = description
			}
			url := fmt.Sprintf("%s/api/events", apiFlag)
			data, err := doPostJSON(url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "t", "", "Event title (required)")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Event description")
	createCmd.Flags().StringVarP(&start, "start", "s", "", "Start instant, RFC 3339 (required)")
	createCmd.Flags().StringVarP(&unit, "unit", "u", "days", "Display unit: days|weeks|months|years")
	createCmd.Flags().BoolVarP(&pinned, "pinned", "p", false, "Pin the event")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("start")
	eventsCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Get an event by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/events/%s", apiFlag, args[0])
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	eventsCmd.AddCommand(getCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all events",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/events", apiFlag)
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	eventsCmd.AddCommand(listCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event and everything attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/events/%s", apiFlag, args[0])
			if err := doDelete(url); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "deleted %s\n", args[0])
			return nil
		},
	}
	eventsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(eventsCmd)
}
