package comment

import (
	"fmt"
	"slices"
	"strings"
)

// UploadAttributes adds, changes or removes an upload. Entries without a
// file name are dropped unless they ask for removal.
type UploadAttributes struct {
	ID          int64
	FileName    string
	FileSize    int64
	ContentType string
	Destroy     bool
}

func (a UploadAttributes) rejected() bool {
	return !a.Destroy && blank(a.FileName)
}

// LinkedDocumentAttributes adds, changes or removes a linked document.
// Entries missing a title or URL are dropped unless they ask for removal.
type LinkedDocumentAttributes struct {
	ID      int64
	Title   string
	URL     string
	Destroy bool
}

func (a LinkedDocumentAttributes) rejected() bool {
	return !a.Destroy && (blank(a.Title) || blank(a.URL))
}

// assignUploads applies nested upload attributes to c and returns the IDs
// of existing uploads marked for removal.
func assignUploads(c *Comment, attrs []UploadAttributes) ([]int64, error) {
	var removed []int64
	for _, a := range attrs {
		if a.rejected() {
			continue
		}

		if a.ID == 0 {
			if a.Destroy {
				continue
			}
			c.Uploads = append(c.Uploads, &Upload{
				FileName:    strings.TrimSpace(a.FileName),
				FileSize:    a.FileSize,
				ContentType: a.ContentType,
			})
			continue
		}

		i := slices.IndexFunc(c.Uploads, func(u *Upload) bool { return u.ID == a.ID })
		if i < 0 {
			return nil, fmt.Errorf("upload %d does not belong to comment %d", a.ID, c.ID)
		}
		if a.Destroy {
			removed = append(removed, a.ID)
			c.Uploads = slices.Delete(c.Uploads, i, i+1)
			continue
		}
		u := c.Uploads[i]
		u.FileName = strings.TrimSpace(a.FileName)
		u.FileSize = a.FileSize
		u.ContentType = a.ContentType
	}
	return removed, nil
}

// assignLinkedDocuments applies nested document attributes to c and returns
// the IDs of existing documents marked for removal.
func assignLinkedDocuments(c *Comment, attrs []LinkedDocumentAttributes) ([]int64, error) {
	var removed []int64
	for _, a := range attrs {
		if a.rejected() {
			continue
		}

		if a.ID == 0 {
			if a.Destroy {
				continue
			}
			c.LinkedDocuments = append(c.LinkedDocuments, &LinkedDocument{
				Title: strings.TrimSpace(a.Title),
				URL:   strings.TrimSpace(a.URL),
			})
			continue
		}

		i := slices.IndexFunc(c.LinkedDocuments, func(d *LinkedDocument) bool { return d.ID == a.ID })
		if i < 0 {
			return nil, fmt.Errorf("linked document %d does not belong to comment %d", a.ID, c.ID)
		}
		if a.Destroy {
			removed = append(removed, a.ID)
			c.LinkedDocuments = slices.Delete(c.LinkedDocuments, i, i+1)
			continue
		}
		d := c.LinkedDocuments[i]
		d.Title = strings.TrimSpace(a.Title)
		d.URL = strings.TrimSpace(a.URL)
	}
	return removed, nil
}
