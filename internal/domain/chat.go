package domain

import "time"

const (
	KindSystem = "system"
	KindUser   = "user"
)

// ChatMessage is immutable once appended to a room's log.
type ChatMessage struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Kind   string    `json:"kind"`
	Author string    `json:"author,omitempty"`
	Text   string    `json:"text"`
	Room   RoomName  `json:"room"`
}

// ChatLog is a bounded ordered transcript. Appends are cheap; once the
// length exceeds High the oldest entries are dropped so that Low remain.
// Amortized trimming, not a hard cap at every append.
type ChatLog struct {
	Entries []ChatMessage
	High    int
	Low     int
}

func (l *ChatLog) Append(m ChatMessage) {
	l.Entries = append(l.Entries, m)
	if l.High > 0 && len(l.Entries) > l.High {
		low := l.Low
		if low <= 0 || low > l.High {
			low = l.High
		}
		keep := l.Entries[len(l.Entries)-low:]
		l.Entries = append([]ChatMessage(nil), keep...)
	}
}

// Tail returns the most recent n entries in original order.
func (l *ChatLog) Tail(n int) []ChatMessage {
	if n <= 0 || len(l.Entries) == 0 {
		return nil
	}
	if n > len(l.Entries) {
		n = len(l.Entries)
	}
	out := make([]ChatMessage, n)
	copy(out, l.Entries[len(l.Entries)-n:])
	return out
}

func (l *ChatLog) Len() int { return len(l.Entries) }
