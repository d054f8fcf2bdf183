package fsrs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/example/versebot/pkg/models"
)

// ErrInvalidRating is returned when a rating outside {1,2,3,4} is applied.
// Check with errors.Is.
var ErrInvalidRating = errors.New("fsrs: invalid rating")

const (
	hoursPerDay = 24
	// graduationInterval is the fixed first interval after Good
	graduationInterval = 1
	// easyInterval is the skip-ahead interval after Easy from a learning state
	easyInterval = 4
)

// Engine computes scheduling transitions for verse records. All methods are
// pure with respect to the engine itself and safe for concurrent use.
type Engine struct {
	params models.Params
}

// New creates an engine with the given parameters
func New(params models.Params) *Engine {
	return &Engine{params: params}
}

// Params returns the weight vector the engine was built with
func (e *Engine) Params() models.Params {
	return e.params
}

// Review applies a rating to the record in place and returns the history
// entry describing the transition. The entry is not persisted here; the
// caller appends it through the store.
func (e *Engine) Review(p *models.VerseProgress, rating models.Rating, now time.Time) (models.ReviewLog, error) {
	if !rating.IsValid() {
		return models.ReviewLog{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	prevState := p.State
	prevInterval := p.Interval
	elapsed := elapsedDays(p.LastReviewed, now)

	// A fresh record gets its memory parameters seeded before the rating
	// branch runs, so Again on a brand-new verse still has a stability to
	// decay.
	if p.State == models.StateNew {
		p.Stability = e.params.W[0]
		p.Difficulty = clampDifficulty(e.params.W[1])
	}

	retr := e.Retrievability(p.Stability, elapsed)

	switch rating {
	case models.RatingAgain:
		e.applyAgain(p, prevState)
	case models.RatingHard:
		e.applyHard(p, prevState, retr)
	case models.RatingGood:
		e.applyGood(p, prevState, retr)
	case models.RatingEasy:
		e.applyEasy(p, prevState, retr)
	}

	reviewedAt := now
	p.LastReviewed = &reviewedAt
	// Again leaves Interval at 0, so the record comes out due immediately.
	due := now.Add(time.Duration(p.Interval) * hoursPerDay * time.Hour)
	p.NextReview = &due
	p.UpdatedAt = now

	return models.ReviewLog{
		ProgressID:        p.ID,
		Rating:            rating,
		ReviewedAt:        now,
		PrevInterval:      prevInterval,
		ScheduledInterval: p.Interval,
		State:             prevState,
	}, nil
}

func (e *Engine) applyAgain(p *models.VerseProgress, prev models.CardState) {
	if prev == models.StateReview || prev == models.StateRelearning {
		p.Lapses++
	}
	if prev == models.StateReview || prev == models.StateRelearning {
		p.State = models.StateRelearning
	} else {
		p.State = models.StateLearning
	}
	if p.Stability > 0 {
		p.Stability *= e.params.W[3]
	}
	p.Difficulty = clampDifficulty(p.Difficulty + e.params.W[7])
	p.Interval = 0
}

func (e *Engine) applyHard(p *models.VerseProgress, prev models.CardState, retr float64) {
	switch prev {
	case models.StateNew, models.StateLearning:
		p.State = models.StateLearning
		p.Interval = graduationInterval
	case models.StateRelearning:
		// Hard out of relearning returns the verse to its review cycle at a
		// 1-day interval without re-deriving stability.
		p.State = models.StateReview
		p.Interval = graduationInterval
	default: // review
		p.Stability = p.Stability * e.params.W[4] * math.Pow(retr, -e.params.W[2])
		p.Difficulty = clampDifficulty(p.Difficulty + e.params.W[8])
		p.Interval = e.nextInterval(p.Stability)
	}
}

func (e *Engine) applyGood(p *models.VerseProgress, prev models.CardState, retr float64) {
	switch prev {
	case models.StateNew, models.StateLearning:
		// First graduation: fixed 1-day interval, stability keeps its seed.
		p.State = models.StateReview
		p.Interval = graduationInterval
	default: // relearning or review
		p.State = models.StateReview
		p.Stability = p.Stability * e.params.W[5] * math.Pow(retr, -e.params.W[2])
		p.Difficulty = clampDifficulty(p.Difficulty + e.params.W[9])
		p.Interval = e.nextInterval(p.Stability)
	}
}

func (e *Engine) applyEasy(p *models.VerseProgress, prev models.CardState, retr float64) {
	switch prev {
	case models.StateNew, models.StateLearning, models.StateRelearning:
		// Skip-ahead graduation
		p.State = models.StateReview
		p.Interval = easyInterval
	default: // review
		p.Stability = p.Stability * e.params.W[6] * math.Pow(retr, -e.params.W[2])
		p.Difficulty = clampDifficulty(p.Difficulty + e.params.W[10])
		p.Interval = e.nextInterval(p.Stability)
	}
}

// PreviewIntervals runs the full transition for each of the four ratings on a
// scratch copy and reports the resulting interval in days. The input record
// is never mutated; this backs the "time until next review" preview on each
// rating button.
func (e *Engine) PreviewIntervals(p models.VerseProgress, now time.Time) map[models.Rating]int {
	out := make(map[models.Rating]int, 4)
	for _, r := range []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy} {
		scratch := p.Clone()
		if _, err := e.Review(&scratch, r, now); err != nil {
			continue
		}
		out[r] = scratch.Interval
	}
	return out
}

// Retrievability estimates the probability of successful recall after
// elapsedDays. Non-positive stability or elapsed time short-circuits to 1
// (treated as just reviewed) so the formula never divides by zero.
func (e *Engine) Retrievability(stability, elapsedDays float64) float64 {
	if stability <= 0 || elapsedDays <= 0 {
		return 1
	}
	return math.Exp(math.Log(0.9) * elapsedDays / stability)
}

// nextInterval converts a target stability into a whole-day interval using
// the configured retention target, floored at one day.
func (e *Engine) nextInterval(stability float64) int {
	ivl := int(math.Round(stability * math.Log(e.params.RequestRetention) / math.Log(0.9)))
	if ivl < 1 {
		ivl = 1
	}
	return ivl
}

// IsDue reports whether the record should be offered for review at now. New
// records and records with no scheduled review are always due.
func IsDue(p models.VerseProgress, now time.Time) bool {
	if p.State == models.StateNew || p.NextReview == nil {
		return true
	}
	return !p.NextReview.After(now)
}

func elapsedDays(lastReviewed *time.Time, now time.Time) float64 {
	if lastReviewed == nil {
		return 0
	}
	d := now.Sub(*lastReviewed).Hours() / hoursPerDay
	if d < 0 {
		return 0
	}
	return d
}

func clampDifficulty(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
