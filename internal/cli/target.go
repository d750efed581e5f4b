package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/project-tracker/internal/target"
)

func newTargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage tasks, conversations, pages and notes",
	}
	cmd.AddCommand(newTargetAddCmd(), newTargetShowCmd())
	return cmd
}

func newTargetAddCmd() *cobra.Command {
	var (
		projectID int64
		private   bool
		simple    bool
	)

	cmd := &cobra.Command{
		Use:   "add <kind> <owner-id> <title>",
		Short: "Add a target",
		Long: "Add a task, conversation, page or note owned by a user. " +
			"Tasks and conversations may be private; a simple conversation is removed with its last comment.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := target.ParseKind(args[0])
			if err != nil {
				return err
			}
			owner, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid owner ID: %s", args[1])
			}

			n := target.New{
				Kind:    kind,
				UserID:  owner,
				Title:   strings.Join(args[2:], " "),
				Private: private,
				Simple:  simple,
			}
			if cmd.Flags().Changed("project") {
				n.ProjectID = &projectID
			}
			return runTargetAdd(cmd, n)
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "project the target belongs to")
	cmd.Flags().BoolVar(&private, "private", false, "create a private task or conversation")
	cmd.Flags().BoolVar(&simple, "simple", false, "remove the conversation with its last comment")

	return cmd
}

func runTargetAdd(cmd *cobra.Command, n target.New) error {
	if err := n.Validate(); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.users.GetByID(n.UserID); err != nil {
		return err
	}
	if n.ProjectID != nil {
		if _, err := a.projects.GetByID(*n.ProjectID); err != nil {
			return err
		}
	}

	t, err := a.targets.Create(n)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), t)
	}
	_, err = fmt.Fprintf(output(cmd), "%s added.\n", t.Ref())
	return err
}

func newTargetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind>:<id>",
		Short: "Show a target",
		Long:  "Show a target's owner, privacy, watchers and comment count.",
		Args:  cobra.ExactArgs(1),
		RunE:  runTargetShow,
	}
}

func runTargetShow(cmd *cobra.Command, args []string) error {
	ref, err := target.ParseRef(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	t, err := a.targets.Load(ref)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), t)
	}
	return printTarget(output(cmd), t)
}
