package arbiter

import (
	"log/slog"
	"time"

	"github.com/navlane/navlane/monitor/internal/config"
)

// Candidate is one lane's standing in the current selection round.
type Candidate struct {
	ID string

	// Healthy is the lane's hard health gate result.
	Healthy bool

	// ErrorScore ranks usable lanes; lower is better. Only meaningful when
	// Healthy is true.
	ErrorScore float64

	// HaveSample is false until the lane has delivered its first state sample.
	HaveSample bool

	// LastApplied is the monitor-side receive time of the lane's last sample.
	LastApplied time.Time
}

// Verdict is the arbiter's per-lane output for one selection round.
type Verdict struct {
	ID         string
	Primary    bool
	Usable     bool
	Stale      bool
	ErrorScore float64
}

// Arbiter holds the selection state across rounds. Not safe for concurrent
// use; the poll loop owns it.
type Arbiter struct {
	margin     float64
	cooldown   time.Duration
	staleAfter time.Duration

	primary    string
	lastSwitch time.Time

	now func() time.Time
}

// New returns an Arbiter tuned by cfg with no primary selected yet.
func New(cfg config.ArbiterConfig) *Arbiter {
	return &Arbiter{
		margin:     cfg.SwitchMargin,
		cooldown:   cfg.SwitchCooldown,
		staleAfter: cfg.StaleAfter,
		now:        time.Now,
	}
}

// Primary returns the currently selected lane ID, or "" before the first
// successful selection.
func (a *Arbiter) Primary() string { return a.primary }

// Evaluate runs one selection round over the candidates and returns a
// verdict per lane in input order.
//
// Selection rules, in precedence order:
//  1. A lane is usable only if healthy, non-stale and has delivered a sample.
//  2. If the current primary is unusable, fail over immediately to the
//     usable lane with the lowest error score. Failovers ignore the cooldown.
//  3. A usable primary is only abandoned voluntarily when a challenger's
//     score undercuts it by more than the switch margin, and not within the
//     cooldown window after the previous switch.
//  4. With no usable lane at all, the previous primary is retained so
//     downstream consumers keep a lane to report against.
func (a *Arbiter) Evaluate(cands []Candidate) []Verdict {
	now := a.now()

	verdicts := make([]Verdict, len(cands))
	best := -1 // index of lowest-score usable lane
	primaryIdx := -1

	for i, c := range cands {
		stale := !c.HaveSample || now.Sub(c.LastApplied) > a.staleAfter
		usable := c.Healthy && !stale
		verdicts[i] = Verdict{
			ID:         c.ID,
			Usable:     usable,
			Stale:      stale,
			ErrorScore: c.ErrorScore,
		}
		if c.ID == a.primary {
			primaryIdx = i
		}
		if usable && (best < 0 || c.ErrorScore < cands[best].ErrorScore) {
			best = i
		}
	}

	switch {
	case best < 0:
		// Nothing usable. Hold the previous primary rather than orbiting
		// between equally dead lanes.

	case primaryIdx < 0 || !verdicts[primaryIdx].Usable:
		reason := "failover"
		if a.primary == "" {
			reason = "initial selection"
		}
		a.switchTo(cands[best].ID, now, reason)

	case cands[best].ID != a.primary &&
		cands[primaryIdx].ErrorScore-cands[best].ErrorScore > a.margin &&
		now.Sub(a.lastSwitch) >= a.cooldown:
		a.switchTo(cands[best].ID, now, "better score")
	}

	for i := range verdicts {
		verdicts[i].Primary = verdicts[i].ID == a.primary
	}
	return verdicts
}

func (a *Arbiter) switchTo(id string, now time.Time, reason string) {
	if a.primary == id {
		return
	}
	slog.Info("arbiter: primary lane changed",
		"from", a.primary, "to", id, "reason", reason)
	a.primary = id
	a.lastSwitch = now
}
