package cli

import (
	"fmt"
	"mime"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Manage uploads",
	}

	var contentType string
	add := &cobra.Command{
		Use:   "add <name> <size>",
		Short: "Register an upload",
		Long:  "Register a file's metadata so a later comment can attach it with --upload-id.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || size < 0 {
				return fmt.Errorf("invalid size: %s", args[1])
			}
			if contentType == "" {
				contentType = mime.TypeByExtension(filepath.Ext(args[0]))
			}
			return runUploadAdd(cmd, args[0], size, contentType)
		},
	}
	add.Flags().StringVar(&contentType, "type", "", "content type (default: guessed from the name)")

	cmd.AddCommand(add)
	return cmd
}

func runUploadAdd(cmd *cobra.Command, name string, size int64, contentType string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.comments.CreateUpload(name, size, contentType)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(output(cmd), u)
	}
	_, err = fmt.Fprintf(output(cmd), "Upload #%d registered: %s (%d bytes)\n", u.ID, u.FileName, u.FileSize)
	return err
}
