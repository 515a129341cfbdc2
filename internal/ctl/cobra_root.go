// Package ctl implements the calctl command tree: a small operator CLI that
// talks to a running calbotd over its HTTP API.
package ctl

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"calbotd/pkg/types"
)

// Main parses args and runs the command tree.
func Main(args []string) error {
	root := buildRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func defaultAddr() string {
	if v := os.Getenv("CALBOTD_ADDR"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// buildRootCmd constructs the Cobra command tree.
func buildRootCmd() *cobra.Command {
	var addr string
	root := &cobra.Command{
		Use:           "calctl",
		Short:         "Operator CLI for the calbotd daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", defaultAddr(), "Base URL of the calbotd API (defaults CALBOTD_ADDR)")
	cl := func() *client { return newClient(strings.TrimRight(addr, "/")) }

	statusCmd := &cobra.Command{Use: "status", Short: "Show window status", RunE: func(cmd *cobra.Command, args []string) error {
		var st types.StatusResponse
		if err := cl().getJSON("/status", &st); err != nil {
			return err
		}
		return printJSON(st)
	}}

	upcomingCmd := &cobra.Command{Use: "upcoming", Short: "Show the upcoming-event window", RunE: func(cmd *cobra.Command, args []string) error {
		var resp types.UpcomingResponse
		if err := cl().getJSON("/events/upcoming", &resp); err != nil {
			return err
		}
		return printJSON(resp)
	}}

	cacheCmd := &cobra.Command{Use: "cache", Short: "Response cache operations", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("cache requires a subcommand: stats")
	}}
	cacheStats := &cobra.Command{Use: "stats", Short: "Show cache hit/miss counters", RunE: func(cmd *cobra.Command, args []string) error {
		var st types.CacheStats
		if err := cl().getJSON("/cache/stats", &st); err != nil {
			return err
		}
		return printJSON(st)
	}}
	cacheCmd.AddCommand(cacheStats)

	skipsCmd := &cobra.Command{Use: "skips", Short: "Manage dismissed events", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("skips requires a subcommand: list|add|remove")
	}}
	skipsList := &cobra.Command{Use: "list", Short: "List dismissed meeting IDs", RunE: func(cmd *cobra.Command, args []string) error {
		var resp types.SkipsResponse
		if err := cl().getJSON("/skips", &resp); err != nil {
			return err
		}
		for _, id := range resp.Skips {
			fmt.Println(id)
		}
		return nil
	}}
	skipsAdd := &cobra.Command{Use: "add <meeting-id>", Short: "Dismiss an event", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return cl().postJSON("/skips", types.SkipRequest{MeetingID: args[0]}, nil)
	}}
	skipsRemove := &cobra.Command{Use: "remove <meeting-id>", Short: "Un-dismiss an event", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return cl().delete("/skips/" + args[0])
	}}
	skipsCmd.AddCommand(skipsList, skipsAdd, skipsRemove)

	refreshCmd := &cobra.Command{Use: "refresh", Short: "Trigger an immediate refresh cycle", RunE: func(cmd *cobra.Command, args []string) error {
		var resp types.RefreshResponse
		if err := cl().postJSON("/refresh", nil, &resp); err != nil {
			return err
		}
		return printJSON(resp)
	}}

	root.AddCommand(statusCmd, upcomingCmd, cacheCmd, skipsCmd, refreshCmd)
	return root
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
