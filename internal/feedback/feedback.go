// Package feedback records whether an explanation page helped.
package feedback

import (
	"context"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	votesTotal *prometheus.CounterVec
	votesOnce  sync.Once
)

func votes() *prometheus.CounterVec {
	votesOnce.Do(func() {
		votesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upiexplain_feedback_total",
				Help: "Total number of feedback votes on explanation pages",
			},
			[]string{"helpful"}, // "true" or "false"
		)
	})
	return votesTotal
}

// Vote is a parsed feedback value.
type Vote int

const (
	// VoteNone means the request carried no usable vote.
	VoteNone Vote = iota
	VoteHelpful
	VoteNotHelpful
)

// ParseVote maps the ok query value: "1" is helpful, "0" is not helpful,
// anything else is VoteNone.
func ParseVote(ok string) Vote {
	switch strings.TrimSpace(ok) {
	case "1":
		return VoteHelpful
	case "0":
		return VoteNotHelpful
	default:
		return VoteNone
	}
}

// Recorder logs votes and counts them.
type Recorder struct {
	logger *zap.Logger
	votes  *prometheus.CounterVec
}

// NewRecorder creates a recorder. A nil logger discards log output.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger, votes: votes()}
}

// Record stores a vote for slug and reports whether one was recorded.
// VoteNone is ignored.
func (r *Recorder) Record(ctx context.Context, slug string, vote Vote) bool {
	var helpful bool
	switch vote {
	case VoteHelpful:
		helpful = true
	case VoteNotHelpful:
	default:
		return false
	}

	label := "false"
	if helpful {
		label = "true"
	}
	r.votes.WithLabelValues(label).Inc()
	r.logger.Info("feedback",
		zap.String("slug", strings.ToLower(slug)),
		zap.Bool("helpful", helpful))
	return true
}
