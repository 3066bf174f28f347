package main

import (
	"log"
	"time"

	"github.com/loov/hrtime"
)

// frameStats counts presented frames for one window and logs the rate
// once per interval.
type frameStats struct {
	name     string
	interval time.Duration
	now      func() time.Duration
	log      *log.Logger

	frames int
	last   time.Duration
	fps    float64
}

func newFrameStats(name string, interval time.Duration, logger *log.Logger) *frameStats {
	if logger == nil {
		logger = log.Default()
	}
	s := &frameStats{
		name:     name,
		interval: interval,
		now:      hrtime.Now,
		log:      logger,
	}
	s.last = s.now()
	return s
}

// frame records one frame. It reports true when a new rate was computed.
func (s *frameStats) frame() bool {
	if s.interval <= 0 {
		return false
	}
	now := s.now()
	s.frames++
	elapsed := now - s.last
	if elapsed < s.interval {
		return false
	}
	s.fps = float64(s.frames) / elapsed.Seconds()
	s.frames = 0
	s.last = now
	s.log.Printf("window %q: %.1f fps", s.name, s.fps)
	return true
}
