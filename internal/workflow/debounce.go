package workflow

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DebounceMsg is delivered when a scheduled debounce tick elapses.
type DebounceMsg struct {
	Source string
	Seq    int
	Value  string
}

// Debouncer keeps a single pending tick per input source. Scheduling again
// supersedes the previous tick instead of stacking a second one.
type Debouncer struct {
	source string
	delay  time.Duration
	seq    int
}

func NewDebouncer(source string, delay time.Duration) *Debouncer {
	return &Debouncer{source: source, delay: delay}
}

func (d *Debouncer) Schedule(value string) tea.Cmd {
	d.seq++
	seq, source := d.seq, d.source
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return DebounceMsg{Source: source, Seq: seq, Value: value}
	})
}

// Cancel drops whatever tick is pending.
func (d *Debouncer) Cancel() { d.seq++ }

// Fired reports whether msg is the live tick for this debouncer.
func (d *Debouncer) Fired(msg DebounceMsg) bool {
	return msg.Source == d.source && msg.Seq == d.seq
}
