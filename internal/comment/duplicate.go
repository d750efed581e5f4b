package comment

import "slices"

// IsDuplicateOf reports whether c repeats other's body, assignee, status
// and hours. Uploads are compared separately by isDuplicate.
func (c *Comment) IsDuplicateOf(other *Comment) bool {
	return c.Body == other.Body &&
		equalPtr(c.AssignedID, other.AssignedID) &&
		c.Status == other.Status &&
		equalPtr(c.Hours, other.Hours)
}

// isDuplicate reports whether candidate is an accidental resubmission of
// preceding, the user's latest comment on the same target.
func isDuplicate(candidate, preceding *Comment) bool {
	if preceding == nil || !candidate.IsDuplicateOf(preceding) {
		return false
	}
	return slices.Equal(uploadSignatures(candidate.Uploads), uploadSignatures(preceding.Uploads))
}

// uploadSignatures returns the sorted signatures of uploads.
func uploadSignatures(uploads []*Upload) []string {
	sigs := make([]string, 0, len(uploads))
	for _, u := range uploads {
		sigs = append(sigs, u.Signature())
	}
	slices.Sort(sigs)
	return sigs
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
