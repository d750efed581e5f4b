package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/evcraddock/project-tracker/internal/activity"
	"github.com/evcraddock/project-tracker/internal/comment"
	"github.com/evcraddock/project-tracker/internal/people"
	"github.com/evcraddock/project-tracker/internal/project"
	"github.com/evcraddock/project-tracker/internal/target"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printUserTable prints users as a formatted table.
func printUserTable(out io.Writer, users []*people.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(out, "No users found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tEMAIL"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}
	for _, u := range users {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, truncate(u.Name, 30), u.Email); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(out, "\nTotal: %d users\n", len(users))
	return err
}

// printProjectTable prints projects as a formatted table.
func printProjectTable(out io.Writer, projects []*project.Project) error {
	if len(projects) == 0 {
		_, err := fmt.Fprintln(out, "No projects found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tCREATED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}
	for _, p := range projects {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, truncate(p.Name, 40), p.CreatedAt.Format("2006-01-02")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

// printTarget prints a target and whatever its kind supports.
func printTarget(w io.Writer, t target.Target) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", t.Ref())
	if base := baseOf(t); base != nil {
		fmt.Fprintf(&b, "  Title:     %s\n", base.Title)
		fmt.Fprintf(&b, "  Comments:  %d\n", base.CommentsCount)
	}
	fmt.Fprintf(&b, "  Owner:     %s\n", formatID(t.Owner()))
	if p := t.Project(); p != nil {
		fmt.Fprintf(&b, "  Project:   %d\n", *p)
	}
	if p, ok := t.(target.Private); ok {
		fmt.Fprintf(&b, "  Private:   %s\n", yesNo(p.IsPrivate()))
	}
	if d, ok := t.(target.Disposable); ok && d.Simple() {
		b.WriteString("  Simple:    yes\n")
	}
	if wl, ok := t.(target.Watchable); ok {
		fmt.Fprintf(&b, "  Watchers:  %s\n", formatIDs(wl.Watchers()))
	}
	if u, ok := t.(target.Touchable); ok && !u.LastUpdated().IsZero() {
		fmt.Fprintf(&b, "  Updated:   %s\n", u.LastUpdated().Format("2006-01-02 15:04"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// baseOf returns the common columns of a target of a known kind.
func baseOf(t target.Target) *target.Base {
	switch v := t.(type) {
	case *target.Task:
		return &v.Base
	case *target.Conversation:
		return &v.Base
	case *target.Page:
		return &v.Base
	case *target.Note:
		return &v.Base
	default:
		return nil
	}
}

// printCommentAdded prints a newly created comment.
func printCommentAdded(w io.Writer, res *comment.Result) error {
	c := res.Comment
	if _, err := fmt.Fprintf(w, "Comment #%d added to %s.\n", c.ID, c.Target()); err != nil {
		return err
	}
	if c.Body != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", c.Body); err != nil {
			return err
		}
	}
	if c.HasHours() {
		if _, err := fmt.Fprintf(w, "  Hours: %s\n", formatHours(c.Hours)); err != nil {
			return err
		}
	}
	if res.Activity != nil {
		if _, err := fmt.Fprintf(w, "  Logged to project #%d.\n", res.Activity.ProjectID); err != nil {
			return err
		}
	}
	return nil
}

// printCommentList prints comments in text format.
func printCommentList(w io.Writer, comments []*comment.Comment) error {
	if len(comments) == 0 {
		_, err := fmt.Fprintln(w, "No comments.")
		return err
	}

	for _, c := range comments {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] #%d (%s)", c.CreatedAt.Format("2006-01-02 15:04"), c.ID, authorName(c))
		if c.IsPrivate {
			b.WriteString(" private")
		}
		if c.HasHours() {
			fmt.Fprintf(&b, " %s", formatHours(c.Hours))
		}
		if c.Assigned != nil {
			fmt.Fprintf(&b, " → %s", displayName(c.Assigned))
		}
		b.WriteString("\n")
		if c.Body != "" {
			fmt.Fprintf(&b, "  %s\n", c.Body)
		}
		for _, u := range c.Uploads {
			fmt.Fprintf(&b, "  📎 %s (%d bytes) #%d\n", u.FileName, u.FileSize, u.ID)
		}
		for _, d := range c.LinkedDocuments {
			fmt.Fprintf(&b, "  🔗 %s <%s> #%d\n", d.Title, d.URL, d.ID)
		}
		b.WriteString("\n")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// printHoursTable prints the comments that tracked time and their total.
func printHoursTable(out io.Writer, comments []*comment.Comment) error {
	if len(comments) == 0 {
		_, err := fmt.Fprintln(out, "No hours logged.")
		return err
	}

	var total float64
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tDATE\tTHREAD\tHOURS\tBILLABLE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t------\t-----\t--------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}
	for _, c := range comments {
		total += *c.Hours
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			c.ID, c.CreatedAt.Format("2006-01-02"), c.ThreadID(), formatHours(c.Hours), yesNo(c.Billable)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(out, "\nTotal: %s\n", formatHours(&total))
	return err
}

// printActivities prints activity log entries in text format.
func printActivities(w io.Writer, entries []*activity.Activity) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No activity.")
		return err
	}

	for _, a := range entries {
		if _, err := fmt.Fprintf(w, "[%s] user %s: %s %s #%d\n",
			a.CreatedAt.Format("2006-01-02 15:04"), formatID(a.UserID), a.Action, a.TargetType, a.TargetID); err != nil {
			return err
		}
	}
	return nil
}

// formatHours renders hours as "2.5h", or "-" when unset.
func formatHours(hours *float64) string {
	if hours == nil {
		return "-"
	}
	return strconv.FormatFloat(*hours, 'f', -1, 64) + "h"
}

func authorName(c *comment.Comment) string {
	if c.User == nil {
		return "unknown"
	}
	return displayName(c.User)
}

// displayName prefers a user's name and marks removed users.
func displayName(u *people.User) string {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	if u.Deleted() {
		name += " (removed)"
	}
	return name
}

func formatID(id int64) string {
	if id == 0 {
		return "-"
	}
	return "#" + strconv.FormatInt(id, 10)
}

func formatIDs(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = formatID(id)
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
