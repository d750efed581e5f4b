package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name> <email>",
			Short: "Add a user",
			Args:  cobra.ExactArgs(2),
			RunE:  runUserAdd,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List active users",
			Args:  cobra.NoArgs,
			RunE:  runUserList,
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a user",
			Long:  "Soft-delete a user. Their comments keep pointing at them.",
			Args:  cobra.ExactArgs(1),
			RunE:  runUserRemove,
		},
	)
	return cmd
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.users.Add(args[0], args[1])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), u)
	}
	_, err = fmt.Fprintf(output(cmd), "User #%d added: %s <%s>\n", u.ID, u.Name, u.Email)
	return err
}

func runUserList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	users, err := a.users.List()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), users)
	}
	return printUserTable(output(cmd), users)
}

func runUserRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user ID: %s", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.users.SoftDelete(id); err != nil {
		return err
	}
	a.directory.Forget(id)

	if isJSON() {
		return printJSON(output(cmd), map[string]interface{}{"id": id, "removed": true})
	}
	_, err = fmt.Fprintf(output(cmd), "User #%d removed.\n", id)
	return err
}
