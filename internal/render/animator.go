package render

import (
	"math"
	"slices"

	"github.com/charmbracelet/harmonica"
)

const settleEpsilon = 0.01

type motion struct {
	pos, vel, target float64
}

// Animator eases each level's presence between 0 (hidden) and 1 (shown)
// on a spring when the visible window changes.
type Animator struct {
	spring harmonica.Spring
	levels map[int]*motion
}

func NewAnimator(motionLevel string) *Animator {
	spring := harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8)
	switch motionLevel {
	case "reduced":
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.92)
	case "off":
		spring = harmonica.NewSpring(harmonica.FPS(60), 1000.0, 1.0)
	}
	return &Animator{spring: spring, levels: map[int]*motion{}}
}

// Start fades in levels that join the window and fades out the ones that
// leave it. Levels in both keep whatever motion they had.
func (a *Animator) Start(old, new []int) {
	in := map[int]bool{}
	for _, l := range new {
		in[l] = true
		m, ok := a.levels[l]
		switch {
		case !ok && slices.Contains(old, l):
		case !ok:
			a.levels[l] = &motion{target: 1}
		default:
			m.target = 1
		}
	}
	for _, l := range old {
		if in[l] {
			continue
		}
		m, ok := a.levels[l]
		if !ok {
			m = &motion{pos: 1}
			a.levels[l] = m
		}
		m.target = 0
	}
}

// Step advances every moving level by one frame and reports whether any
// is still moving.
func (a *Animator) Step() bool {
	for l, m := range a.levels {
		m.pos, m.vel = a.spring.Update(m.pos, m.vel, m.target)
		if math.Abs(m.pos-m.target) < settleEpsilon && math.Abs(m.vel) < settleEpsilon {
			delete(a.levels, l)
		}
	}
	return len(a.levels) > 0
}

// Settle jumps every level to its target.
func (a *Animator) Settle() {
	clear(a.levels)
}

func (a *Animator) Active() bool { return len(a.levels) > 0 }

// Presence is 1 for levels at rest and the spring position otherwise.
func (a *Animator) Presence(level int) float64 {
	m, ok := a.levels[level]
	if !ok {
		return 1
	}
	return math.Max(0, math.Min(1, m.pos))
}
