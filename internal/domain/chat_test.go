package domain

import (
	"fmt"
	"testing"
	"time"
)

func mkMsg(i int) ChatMessage {
	return ChatMessage{
		ID:   fmt.Sprintf("%06d", i),
		At:   time.Unix(int64(i), 0),
		Kind: KindUser,
		Text: fmt.Sprintf("msg %d", i),
	}
}

func TestChatLogStaysUnderHighWater(t *testing.T) {
	l := ChatLog{High: 10, Low: 6}
	for i := 0; i < 100; i++ {
		l.Append(mkMsg(i))
		if l.Len() > l.High {
			t.Fatalf("after %d appends log holds %d entries; high water is %d", i+1, l.Len(), l.High)
		}
	}
	// trims fire at appends 11, 16, ..., 96; the four appends after the
	// last trim leave the log back at the high water mark
	if l.Len() != 10 {
		t.Fatalf("log holds %d entries after 100 appends; want 10", l.Len())
	}
}

func TestChatLogTrimKeepsNewestInOrder(t *testing.T) {
	l := ChatLog{High: 5, Low: 3}
	for i := 0; i < 6; i++ {
		l.Append(mkMsg(i))
	}
	// 6 appends over high=5 trims to the 3 most recent: 3,4,5
	want := []string{"msg 3", "msg 4", "msg 5"}
	if l.Len() != len(want) {
		t.Fatalf("got %d entries, want %d", l.Len(), len(want))
	}
	for i, w := range want {
		if l.Entries[i].Text != w {
			t.Errorf("entry %d = %q, want %q", i, l.Entries[i].Text, w)
		}
	}
}

func TestChatLogUnboundedWhenHighZero(t *testing.T) {
	var l ChatLog
	for i := 0; i < 50; i++ {
		l.Append(mkMsg(i))
	}
	if l.Len() != 50 {
		t.Fatalf("unbounded log trimmed to %d", l.Len())
	}
}

func TestChatLogTail(t *testing.T) {
	l := ChatLog{High: 100, Low: 50}
	for i := 0; i < 10; i++ {
		l.Append(mkMsg(i))
	}

	cases := []struct {
		n     int
		count int
		first string
	}{
		{3, 3, "msg 7"},
		{10, 10, "msg 0"},
		{25, 10, "msg 0"},
		{0, 0, ""},
	}
	for _, tc := range cases {
		got := l.Tail(tc.n)
		if len(got) != tc.count {
			t.Errorf("Tail(%d) returned %d entries, want %d", tc.n, len(got), tc.count)
			continue
		}
		if tc.count > 0 && got[0].Text != tc.first {
			t.Errorf("Tail(%d) starts at %q, want %q", tc.n, got[0].Text, tc.first)
		}
	}
}

func TestCleanName(t *testing.T) {
	cases := []struct {
		in      string
		max     int
		want    string
		wantErr bool
	}{
		{"alice", 36, "alice", false},
		{"  alice  ", 36, "alice", false},
		{"", 36, "", true},
		{"   \t ", 36, "", true},
		{"abcdefgh", 4, "abcd", false},
		// cap cuts mid-rune: back up to the rune boundary
		{"héllo", 2, "h", false},
		{"日本語", 4, "日", false},
	}
	for _, tc := range cases {
		got, err := CleanName(tc.in, tc.max)
		if (err != nil) != tc.wantErr {
			t.Errorf("CleanName(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("CleanName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
