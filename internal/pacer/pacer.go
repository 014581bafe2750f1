// Package pacer reveals a word sequence one word per tick.
//
// The Pacer does not own a timer. Every arm carries a generation number and
// the caller schedules a tick for it; Load, SetPace, Pause and Stop bump the
// generation so ticks armed earlier are ignored. This keeps at most one live
// tick stream no matter how often the pace changes.
package pacer

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuiread/internal/model"
)

// ErrInvalidPace is returned for a pace that is not a positive finite number.
var ErrInvalidPace = errors.New("pace must be a positive number")

// State is the reveal state.
type State int

const (
	// Idle means no session is in progress.
	Idle State = iota
	// Running means ticks are armed and the cursor advances.
	Running
	// Paused means a session is in progress but no tick is armed.
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// Arm describes the next tick the caller should schedule. The zero Arm
// schedules nothing.
type Arm struct {
	Generation uint64
	Interval   time.Duration
}

// Scheduled reports whether a tick should be scheduled.
func (a Arm) Scheduled() bool {
	return a.Interval > 0
}

// Event is emitted by Tick.
type Event interface {
	event()
}

// WordAdvanced carries the word revealed by one tick.
type WordAdvanced struct {
	// Index is the zero-based position of Word in the sequence.
	Index    int
	Word     string
	Sentence string
	Score    int
}

// SessionFinished is emitted once when the sequence is exhausted.
type SessionFinished struct {
	Words   int
	Elapsed time.Duration
}

func (WordAdvanced) event()    {}
func (SessionFinished) event() {}

// Option configures a Pacer.
type Option func(*Pacer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pacer) {
		p.now = now
	}
}

// WithLogger sets the logger for session events. The default discards them.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pacer) {
		p.log = log
	}
}

// WithPace sets the initial pace. Invalid values are ignored.
func WithPace(pace float64) Option {
	return func(p *Pacer) {
		if v, err := clampPace(pace); err == nil {
			p.pace = v
		}
	}
}

// Pacer owns the word sequence, the cursor and the score.
type Pacer struct {
	words    []string
	cursor   int
	sentence strings.Builder

	score int
	pace  float64

	generation uint64
	state      State
	startedAt  time.Time

	recorder Recorder
	now      func() time.Time
	log      zerolog.Logger
}

// New returns an idle Pacer that reports finished sessions to rec.
func New(rec Recorder, opts ...Option) *Pacer {
	p := &Pacer{
		pace:     1.0,
		recorder: rec,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load replaces the word sequence, rewinds the cursor and starts a session.
// Any tick armed before the call is invalidated. The score is kept.
func (p *Pacer) Load(words []string) Arm {
	p.words = append([]string(nil), words...)
	p.cursor = 0
	p.sentence.Reset()
	p.startedAt = p.now()
	p.state = Running
	p.log.Debug().Int("words", len(p.words)).Float64("pace", p.pace).Msg("session started")
	return p.rearm()
}

// SetPace changes the pace. While running it cancels the armed tick and
// returns the replacement in one step; otherwise it returns the zero Arm.
func (p *Pacer) SetPace(pace float64) (Arm, error) {
	v, err := clampPace(pace)
	if err != nil {
		return Arm{}, err
	}
	p.pace = v
	if p.state != Running {
		return Arm{}, nil
	}
	return p.rearm(), nil
}

// Pause disarms the tick without ending the session.
func (p *Pacer) Pause() {
	if p.state != Running {
		return
	}
	p.generation++
	p.state = Paused
}

// Resume re-arms a paused session.
func (p *Pacer) Resume() Arm {
	if p.state != Paused {
		return Arm{}
	}
	p.state = Running
	return p.rearm()
}

// Stop ends the session without recording statistics.
func (p *Pacer) Stop() {
	p.generation++
	p.state = Idle
	p.startedAt = time.Time{}
}

// Tick advances the cursor for the tick armed with generation gen. Ticks from
// an older generation, or arriving while not running, return a nil Event.
func (p *Pacer) Tick(gen uint64) (Event, Arm) {
	if p.state != Running || gen != p.generation {
		return nil, Arm{}
	}
	if p.cursor < len(p.words) {
		word := p.words[p.cursor]
		if p.cursor > 0 {
			p.sentence.WriteByte(' ')
		}
		p.sentence.WriteString(word)
		ev := WordAdvanced{
			Index:    p.cursor,
			Word:     word,
			Sentence: p.sentence.String(),
		}
		p.cursor++
		p.score++
		ev.Score = p.score
		return ev, p.current()
	}

	p.generation++
	p.state = Idle
	elapsed := p.now().Sub(p.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	p.startedAt = time.Time{}
	if p.recorder != nil {
		p.recorder.Record(elapsed, p.cursor)
	}
	p.log.Info().Int("words", p.cursor).Dur("elapsed", elapsed).Msg("session finished")
	return SessionFinished{Words: p.cursor, Elapsed: elapsed}, Arm{}
}

// State returns the reveal state.
func (p *Pacer) State() State { return p.state }

// Score returns the number of words revealed since the Pacer was created.
func (p *Pacer) Score() int { return p.score }

// Cursor returns the index of the next word to reveal.
func (p *Pacer) Cursor() int { return p.cursor }

// Len returns the length of the loaded sequence.
func (p *Pacer) Len() int { return len(p.words) }

// Pace returns the pace in words per second.
func (p *Pacer) Pace() float64 { return p.pace }

// Interval returns the tick interval for the current pace.
func (p *Pacer) Interval() time.Duration {
	return time.Duration(math.Round(float64(time.Second) / p.pace))
}

// Sentence returns the words revealed so far joined by spaces.
func (p *Pacer) Sentence() string { return p.sentence.String() }

func (p *Pacer) rearm() Arm {
	p.generation++
	return p.current()
}

func (p *Pacer) current() Arm {
	return Arm{Generation: p.generation, Interval: p.Interval()}
}

func clampPace(pace float64) (float64, error) {
	if math.IsNaN(pace) || math.IsInf(pace, 0) || pace <= 0 {
		return 0, ErrInvalidPace
	}
	if pace < model.MinPace {
		return model.MinPace, nil
	}
	if pace > model.MaxPace {
		return model.MaxPace, nil
	}
	return pace, nil
}
