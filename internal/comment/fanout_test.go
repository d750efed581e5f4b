package comment

import (
	"slices"
	"testing"
	"time"

	"github.com/evcraddock/project-tracker/internal/people"
	"github.com/evcraddock/project-tracker/internal/target"
)

func TestFanOutPublicTargetAddsAuthorAndMentions(t *testing.T) {
	task := testTask(7, 3, false)
	task.WatcherIDs = []int64{7}
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := &Comment{UserID: 8, User: &people.User{ID: 8}, CreatedAt: created}

	fanOut(c, task, &operation{mentionedUserIDs: []int64{11, 9}})

	if want := []int64{7, 8, 9, 11}; !slices.Equal(task.Watchers(), want) {
		t.Errorf("Watchers() = %v, want %v", task.Watchers(), want)
	}
	if !task.LastUpdated().Equal(created) {
		t.Errorf("LastUpdated() = %v, want %v", task.LastUpdated(), created)
	}
}

func TestFanOutOwnerMakesTargetPrivateWithRecipients(t *testing.T) {
	task := testTask(7, 3, false)
	task.WatcherIDs = []int64{7, 8, 9}
	c := &Comment{UserID: 7, User: &people.User{ID: 7}, IsPrivate: true}

	fanOut(c, task, &operation{privateSet: true, privateWatcherIDs: []int64{7, 12}, mentionedUserIDs: []int64{9}})

	if !task.IsPrivate() {
		t.Error("IsPrivate() = false, want true")
	}
	if want := []int64{7, 12}; !slices.Equal(task.Watchers(), want) {
		t.Errorf("Watchers() = %v, want %v", task.Watchers(), want)
	}
}

func TestFanOutPrivateWithoutRecipientListKeepsWatchers(t *testing.T) {
	task := testTask(7, 3, true)
	task.WatcherIDs = []int64{9}
	c := &Comment{UserID: 7, User: &people.User{ID: 7}, IsPrivate: true}

	fanOut(c, task, &operation{privateSet: true, mentionedUserIDs: []int64{11}})

	if want := []int64{7, 9}; !slices.Equal(task.Watchers(), want) {
		t.Errorf("Watchers() = %v, want %v", task.Watchers(), want)
	}
}

func TestFanOutRecipientListIgnoredWithoutExplicitPrivacy(t *testing.T) {
	task := testTask(7, 3, true)
	task.WatcherIDs = []int64{9}
	c := &Comment{UserID: 7, User: &people.User{ID: 7}, IsPrivate: true}

	fanOut(c, task, &operation{privateWatcherIDs: []int64{12}})

	if want := []int64{7, 9}; !slices.Equal(task.Watchers(), want) {
		t.Errorf("Watchers() = %v, want %v", task.Watchers(), want)
	}
}

func TestFanOutNonOwnerNeverChangesPrivacy(t *testing.T) {
	for _, private := range []bool{true, false} {
		for _, commentPrivate := range []bool{true, false} {
			task := testTask(7, 3, private)
			c := &Comment{UserID: 8, User: &people.User{ID: 8}, IsPrivate: commentPrivate}

			fanOut(c, task, &operation{privateSet: true, privateWatcherIDs: []int64{8}})

			if task.IsPrivate() != private {
				t.Errorf("target private=%v, comment private=%v: IsPrivate() = %v", private, commentPrivate, task.IsPrivate())
			}
		}
	}
}

func TestFanOutNonOwnerOnPrivateTargetAddsOnlyOwner(t *testing.T) {
	task := testTask(7, 3, true)
	c := &Comment{UserID: 8, User: &people.User{ID: 8}, IsPrivate: true}

	fanOut(c, task, &operation{mentionedUserIDs: []int64{11}})

	if want := []int64{7}; !slices.Equal(task.Watchers(), want) {
		t.Errorf("Watchers() = %v, want %v", task.Watchers(), want)
	}
}

func TestFanOutOwnerMakesTargetPublic(t *testing.T) {
	task := testTask(7, 3, true)
	c := &Comment{UserID: 7, User: &people.User{ID: 7}, IsPrivate: false}

	fanOut(c, task, &operation{privateSet: true, mentionedUserIDs: []int64{11}})

	if task.IsPrivate() {
		t.Error("IsPrivate() = true, want false")
	}
	if want := []int64{7, 11}; !slices.Equal(task.Watchers(), want) {
		t.Errorf("Watchers() = %v, want %v", task.Watchers(), want)
	}
}

func TestFanOutPageWithoutPrivacy(t *testing.T) {
	page := &target.Page{}
	page.ID = 2
	page.UserID = 7
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := &Comment{UserID: 8, User: &people.User{ID: 8}, IsPrivate: true, CreatedAt: created}

	fanOut(c, page, &operation{})

	if want := []int64{8}; !slices.Equal(page.Watchers(), want) {
		t.Errorf("Watchers() = %v, want %v", page.Watchers(), want)
	}
	if !page.LastUpdated().Equal(created) {
		t.Errorf("LastUpdated() = %v, want %v", page.LastUpdated(), created)
	}
}

func TestFanOutNoteIsUntouched(t *testing.T) {
	note := &target.Note{}
	note.ID = 3
	note.UserID = 7
	before := *note

	fanOut(&Comment{UserID: 8, User: &people.User{ID: 8}}, note, &operation{mentionedUserIDs: []int64{9}})

	if *note != before {
		t.Errorf("note changed: %+v, want %+v", *note, before)
	}
}
