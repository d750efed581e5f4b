package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a project",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runProjectAdd,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List projects",
			Args:  cobra.NoArgs,
			RunE:  runProjectList,
		},
		&cobra.Command{
			Use:   "hours <id>",
			Short: "List the comments that tracked time on a project",
			Args:  cobra.ExactArgs(1),
			RunE:  runProjectHours,
		},
	)
	return cmd
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.projects.Add(strings.Join(args, " "))
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), p)
	}
	_, err = fmt.Fprintf(output(cmd), "Project #%d added: %s\n", p.ID, p.Name)
	return err
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	projects, err := a.projects.List()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), projects)
	}
	return printProjectTable(output(cmd), projects)
}

func runProjectHours(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid project ID: %s", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.projects.GetByID(id); err != nil {
		return err
	}
	comments, err := a.comments.ListWithHours(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), comments)
	}
	return printHoursTable(output(cmd), comments)
}
