package pacer

import (
	"fmt"
	"time"
)

// Recorder receives the totals of each finished session.
type Recorder interface {
	Record(elapsed time.Duration, words int)
}

// Statistics accumulates reading totals across sessions. It is never reset.
type Statistics struct {
	TotalTime  time.Duration
	TotalWords int
	Sessions   int
	// TopicCount is kept for callers that group reading by topic; nothing fills it yet.
	TopicCount map[string]int
}

// NewStatistics returns an empty aggregate.
func NewStatistics() *Statistics {
	return &Statistics{TopicCount: map[string]int{}}
}

// Record adds one finished session.
func (s *Statistics) Record(elapsed time.Duration, words int) {
	if elapsed < 0 {
		elapsed = 0
	}
	s.TotalTime += elapsed
	s.TotalWords += words
	s.Sessions++
}

// Snapshot returns a copy that does not share the topic map.
func (s *Statistics) Snapshot() Statistics {
	out := *s
	out.TopicCount = make(map[string]int, len(s.TopicCount))
	for k, v := range s.TopicCount {
		out.TopicCount[k] = v
	}
	return out
}

// WordsPerMinute returns the average reading rate over all sessions.
func (s Statistics) WordsPerMinute() float64 {
	minutes := s.TotalTime.Minutes()
	if minutes <= 0 {
		return 0
	}
	return float64(s.TotalWords) / minutes
}

// String formats the totals for status lines and logs.
func (s Statistics) String() string {
	return fmt.Sprintf("total_time=%s total_words=%d sessions=%d",
		s.TotalTime.Round(time.Millisecond), s.TotalWords, s.Sessions)
}
