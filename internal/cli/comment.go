package cli

import (
	"fmt"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/project-tracker/internal/comment"
	"github.com/evcraddock/project-tracker/internal/target"
)

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add, list, edit and delete comments",
	}
	cmd.AddCommand(
		newCommentAddCmd(),
		&cobra.Command{
			Use:   "list <kind>:<id>",
			Short: "List comments on a target",
			Long:  "List all comments on a target, newest first.",
			Args:  cobra.ExactArgs(1),
			RunE:  runCommentList,
		},
		newCommentEditCmd(),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a comment",
			Long:  "Delete a comment and its activity. A simple conversation left without comments is deleted too.",
			Args:  cobra.ExactArgs(1),
			RunE:  runCommentDelete,
		},
	)
	return cmd
}

// commentFlags are the flags shared by comment add and comment edit.
type commentFlags struct {
	hours    string
	status   int
	billable bool
	assign   int64
	private  bool
	public   bool
	uploads  []string
	docs     []string
}

func (f *commentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hours, "hours", "", `time spent, e.g. "1.5", "2h 30m", "2:30" or "45m"`)
	cmd.Flags().IntVar(&f.status, "status", 0, "status code")
	cmd.Flags().BoolVar(&f.billable, "billable", false, "mark the time as billable")
	cmd.Flags().Int64Var(&f.assign, "assign", 0, "user to assign")
	cmd.Flags().BoolVar(&f.private, "private", false, "make the comment private")
	cmd.Flags().BoolVar(&f.public, "public", false, "make the comment public")
	cmd.Flags().StringArrayVar(&f.uploads, "upload", nil, "attach a file as name:size (repeatable)")
	cmd.Flags().StringArrayVar(&f.docs, "doc", nil, "link a document as title=url (repeatable)")
}

// privacy returns the explicitly requested privacy, or nil when neither
// --private nor --public was given.
func (f *commentFlags) privacy(cmd *cobra.Command) (*bool, error) {
	private, public := cmd.Flags().Changed("private"), cmd.Flags().Changed("public")
	switch {
	case private && public:
		return nil, fmt.Errorf("--private and --public are mutually exclusive")
	case private:
		return &f.private, nil
	case public:
		v := !f.public
		return &v, nil
	default:
		return nil, nil
	}
}

func newCommentAddCmd() *cobra.Command {
	var (
		flags     commentFlags
		userID    int64
		privateTo []int64
		mentions  []int64
		uploadIDs []int64
		importing bool
	)

	cmd := &cobra.Command{
		Use:   "add <kind>:<id> [text]",
		Short: "Comment on a target",
		Long: "Add a comment to a task, conversation, page or note. The body is markdown. " +
			"Without --user the target's owner is the author.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := target.ParseRef(args[0])
			if err != nil {
				return err
			}

			req := comment.CreateRequest{
				Target:           ref,
				UserID:           userID,
				Body:             strings.Join(args[1:], " "),
				Status:           flags.status,
				Billable:         flags.billable,
				MentionedUserIDs: mentions,
				UploadIDs:        uploadIDs,
				Importing:        importing,
			}
			if flags.hours != "" {
				req.HumanHours = &flags.hours
			}
			if cmd.Flags().Changed("assign") {
				req.AssignedID = &flags.assign
			}
			if req.IsPrivate, err = flags.privacy(cmd); err != nil {
				return err
			}
			if cmd.Flags().Changed("private-to") {
				req.PrivateWatcherIDs = append([]int64{}, privateTo...)
			}
			if req.Uploads, err = parseUploads(flags.uploads); err != nil {
				return err
			}
			if req.LinkedDocuments, err = parseDocs(flags.docs); err != nil {
				return err
			}

			return runCommentAdd(cmd, req)
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&userID, "user", 0, "author (default: the target's owner)")
	cmd.Flags().Int64SliceVar(&privateTo, "private-to", nil, "with --private on your own target, the only users left watching it")
	cmd.Flags().Int64SliceVar(&mentions, "mention", nil, "users mentioned in the comment")
	cmd.Flags().Int64SliceVar(&uploadIDs, "upload-id", nil, "attach uploads created with 'pt upload add'")
	cmd.Flags().BoolVar(&importing, "importing", false, "skip duplicate detection")

	return cmd
}

func runCommentAdd(cmd *cobra.Command, req comment.CreateRequest) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.service.Create(req)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), res)
	}
	return printCommentAdded(output(cmd), res)
}

func runCommentList(cmd *cobra.Command, args []string) error {
	ref, err := target.ParseRef(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.targets.Load(ref); err != nil {
		return err
	}
	comments, err := a.service.ListByTarget(ref)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), comments)
	}
	if _, err := fmt.Fprintf(output(cmd), "Comments on %s:\n\n", ref); err != nil {
		return err
	}
	return printCommentList(output(cmd), comments)
}

func newCommentEditCmd() *cobra.Command {
	var (
		flags         commentFlags
		removeUploads []int64
		removeDocs    []int64
	)

	cmd := &cobra.Command{
		Use:   "edit <id> [text]",
		Short: "Edit a comment",
		Long:  "Change a comment's body, time, status, assignee, privacy or attachments.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid comment ID: %s", args[0])
			}

			var req comment.UpdateRequest
			if len(args) > 1 {
				body := strings.Join(args[1:], " ")
				req.Body = &body
			}
			if cmd.Flags().Changed("hours") {
				req.HumanHours = &flags.hours
			}
			if cmd.Flags().Changed("status") {
				req.Status = &flags.status
			}
			if cmd.Flags().Changed("billable") {
				req.Billable = &flags.billable
			}
			if cmd.Flags().Changed("assign") {
				req.AssignedID = &flags.assign
			}
			if req.IsPrivate, err = flags.privacy(cmd); err != nil {
				return err
			}
			if req.Uploads, err = parseUploads(flags.uploads); err != nil {
				return err
			}
			if req.LinkedDocuments, err = parseDocs(flags.docs); err != nil {
				return err
			}
			for _, uid := range removeUploads {
				req.Uploads = append(req.Uploads, comment.UploadAttributes{ID: uid, Destroy: true})
			}
			for _, did := range removeDocs {
				req.LinkedDocuments = append(req.LinkedDocuments, comment.LinkedDocumentAttributes{ID: did, Destroy: true})
			}

			return runCommentEdit(cmd, id, req)
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64SliceVar(&removeUploads, "remove-upload", nil, "remove an upload by ID")
	cmd.Flags().Int64SliceVar(&removeDocs, "remove-doc", nil, "remove a linked document by ID")

	return cmd
}

func runCommentEdit(cmd *cobra.Command, id int64, req comment.UpdateRequest) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	c, err := a.service.Update(id, req)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), c)
	}
	_, err = fmt.Fprintf(output(cmd), "Comment #%d updated.\n", c.ID)
	return err
}

func runCommentDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid comment ID: %s", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.service.Destroy(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), map[string]interface{}{"id": id, "deleted": true})
	}
	_, err = fmt.Fprintf(output(cmd), "Comment #%d deleted.\n", id)
	return err
}

// parseUploads reads name:size pairs. The content type is guessed from the
// file extension.
func parseUploads(specs []string) ([]comment.UploadAttributes, error) {
	var attrs []comment.UploadAttributes
	for _, s := range specs {
		i := strings.LastIndex(s, ":")
		if i < 0 {
			return nil, fmt.Errorf("invalid upload %q: want name:size", s)
		}
		size, err := strconv.ParseInt(s[i+1:], 10, 64)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("invalid upload size in %q", s)
		}
		name := s[:i]
		attrs = append(attrs, comment.UploadAttributes{
			FileName:    name,
			FileSize:    size,
			ContentType: mime.TypeByExtension(filepath.Ext(name)),
		})
	}
	return attrs, nil
}

// parseDocs reads title=url pairs.
func parseDocs(specs []string) ([]comment.LinkedDocumentAttributes, error) {
	var attrs []comment.LinkedDocumentAttributes
	for _, s := range specs {
		title, url, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid document %q: want title=url", s)
		}
		attrs = append(attrs, comment.LinkedDocumentAttributes{Title: title, URL: url})
	}
	return attrs, nil
}
