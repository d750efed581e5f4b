package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newActivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activity <project-id>",
		Short: "Show a project's activity",
		Long:  "Show a project's activity log, newest first.",
		Args:  cobra.ExactArgs(1),
		RunE:  runActivity,
	}
}

func runActivity(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid project ID: %s", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.projects.GetByID(id)
	if err != nil {
		return err
	}
	entries, err := a.activity.ListByProject(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), entries)
	}
	if _, err := fmt.Fprintf(output(cmd), "Activity for %s:\n\n", p.Name); err != nil {
		return err
	}
	return printActivities(output(cmd), entries)
}
