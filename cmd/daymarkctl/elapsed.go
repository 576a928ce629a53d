package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var unit, now string
	elapsedCmd := &cobra.Command{
		Use:   "elapsed START",
		Short: "Render elapsed strings for a start instant (RFC 3339)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("start", args[0])
			if unit != "" {
				q.Set("unit", unit)
			}
			if now != "" {
				q.Set("now", now)
			}
			data, err := doGet(fmt.Sprintf("%s/api/elapsed?%s", apiFlag, q.Encode()))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	elapsedCmd.Flags().StringVarP(&unit, "unit", "u", "", "Display unit: days|weeks|months|years (defaults to days)")
	elapsedCmd.Flags().StringVarP(&now, "now", "n", "", "Reference instant, RFC 3339 (defaults to wall time)")
	rootCmd.AddCommand(elapsedCmd)
}
