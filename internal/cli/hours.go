package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/project-tracker/internal/comment"
)

func newHoursCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hours <duration>",
		Short: "Convert a duration to hours",
		Long:  `Show how a duration given to --hours is read, e.g. "2h 30m", "2:30", "45m", "3h" or "1.5".`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			duration := strings.Join(args, " ")
			hours := comment.ParseHours(duration)

			if isJSON() {
				return printJSON(output(cmd), map[string]interface{}{
					"input": duration,
					"hours": hours,
				})
			}
			_, err := fmt.Fprintln(output(cmd), formatHours(hours))
			return err
		},
	}
}
