package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// maxETA caps estimates produced from very slow early progress.
const maxETA = 24 * time.Hour

// TaskProgress counts completed tasks of a run and derives an ETA from the
// average time per completed task. It is safe for concurrent use.
type TaskProgress struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
	startTime time.Time
	now       func() time.Time
}

// NewTaskProgress creates a tracker for total tasks, starting the clock now.
func NewTaskProgress(total int) *TaskProgress {
	if total < 0 {
		total = 0
	}
	return &TaskProgress{total: total, startTime: time.Now(), now: time.Now}
}

// Complete records one finished task and returns the new completed fraction.
// Completions beyond the total are ignored.
func (p *TaskProgress) Complete(failed bool) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed < p.total {
		p.completed++
		if failed {
			p.failed++
		}
	}
	return p.fractionLocked()
}

// Fraction returns the completed share in [0, 1]. An empty run is complete.
func (p *TaskProgress) Fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fractionLocked()
}

func (p *TaskProgress) fractionLocked() float64 {
	if p.total == 0 {
		return 1
	}
	return float64(p.completed) / float64(p.total)
}

// Counts returns the completed and failed counts and the total.
func (p *TaskProgress) Counts() (completed, failed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed, p.failed, p.total
}

// ETA estimates the remaining time from the mean duration of the tasks
// completed so far. It returns 0 until at least one task has completed.
func (p *TaskProgress) ETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed == 0 || p.completed >= p.total {
		return 0
	}
	elapsed := p.now().Sub(p.startTime)
	perTask := elapsed / time.Duration(p.completed)
	eta := perTask * time.Duration(p.total-p.completed)
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// FormatETA renders an ETA for display, with "calculating..." for unknown.
func FormatETA(eta time.Duration) string {
	if eta <= 0 {
		return "calculating..."
	}
	if eta < time.Second {
		return "< 1s"
	}
	eta = eta.Round(time.Second)
	h := int(eta / time.Hour)
	m := int((eta % time.Hour) / time.Minute)
	s := int((eta % time.Minute) / time.Second)
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// ProgressBar renders a bar of length cells, clamping progress to [0, 1].
func ProgressBar(progress float64, length int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar]  42.00% ETA: 3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %6.2f%% ETA: %s", ProgressBar(progress, width), progress*100, FormatETA(eta))
}

// FormatNumberString inserts thousands separators into a decimal string.
func FormatNumberString(s string) string {
	if s == "" {
		return s
	}
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
