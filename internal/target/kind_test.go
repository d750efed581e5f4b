package target

import (
	"slices"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Ref
		wantErr bool
	}{
		{"lower case kind", "task:12", Ref{KindTask, 12}, false},
		{"canonical kind", "Conversation:3", Ref{KindConversation, 3}, false},
		{"page", "PAGE:9", Ref{KindPage, 9}, false},
		{"missing separator", "task12", Ref{}, true},
		{"unknown kind", "milestone:1", Ref{}, true},
		{"non-numeric id", "task:abc", Ref{}, true},
		{"zero id", "note:0", Ref{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRef(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRef(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRef(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKindTable(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindTask, "tasks"},
		{KindConversation, "conversations"},
		{KindPage, "pages"},
		{KindNote, "notes"},
		{Kind("Bogus"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Table(); got != tt.want {
				t.Errorf("%s.Table() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name       string
		target     Target
		private    bool
		watchable  bool
		touchable  bool
		disposable bool
	}{
		{"task", &Task{}, true, true, true, false},
		{"conversation", &Conversation{}, true, true, true, true},
		{"page", &Page{}, false, true, true, false},
		{"note", &Note{}, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, private := tt.target.(Private)
			_, watchable := tt.target.(Watchable)
			_, touchable := tt.target.(Touchable)
			_, disposable := tt.target.(Disposable)
			if private != tt.private {
				t.Errorf("private = %v, want %v", private, tt.private)
			}
			if watchable != tt.watchable {
				t.Errorf("watchable = %v, want %v", watchable, tt.watchable)
			}
			if touchable != tt.touchable {
				t.Errorf("touchable = %v, want %v", touchable, tt.touchable)
			}
			if disposable != tt.disposable {
				t.Errorf("disposable = %v, want %v", disposable, tt.disposable)
			}
		})
	}
}

func TestWatcherList(t *testing.T) {
	var w WatcherList

	w.AddWatchers(3, 1, 0, 3)
	if got, want := w.Watchers(), []int64{1, 3}; !slices.Equal(got, want) {
		t.Errorf("after add = %v, want %v", got, want)
	}

	w.AddWatchers(2)
	if got, want := w.Watchers(), []int64{1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("after second add = %v, want %v", got, want)
	}

	w.SetPrivateWatchers([]int64{9, 5})
	if got, want := w.Watchers(), []int64{5, 9}; !slices.Equal(got, want) {
		t.Errorf("after replace = %v, want %v", got, want)
	}
}
