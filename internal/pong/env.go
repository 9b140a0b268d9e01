// Package pong is a single-paddle ball game and the neural agent that
// plays it.
//
// Coordinates are normalized to [0, 1]. The paddle slides along the left
// wall (x = 0); the ball bounces off the top, bottom and right walls.
package pong

import (
	"math"
	"math/rand"
)

// Game constants.
const (
	PaddleSpeed  = 0.05
	PaddleHeight = 0.2

	MovePenalty = -0.01
	HitReward   = 1.0
	CenterBonus = 1.0
	MissPenalty = -5.0

	// CenterZone is the ball/paddle distance that earns CenterBonus.
	CenterZone = 0.05
)

// Actions.
const (
	ActionDown = -1
	ActionStay = 0
	ActionUp   = 1
)

// State is one observation of the game.
type State struct {
	BallX, BallY   float64
	BallVX, BallVY float64
	PaddleY        float64
}

// Env simulates the game.
type Env struct {
	state State
	rng   *rand.Rand
}

// NewEnv creates a reset environment. rng drives the serve velocity; nil
// uses a source seeded with 1.
func NewEnv(rng *rand.Rand) *Env {
	if rng == nil {
		//nolint:gosec // game physics is not security-critical
		rng = rand.New(rand.NewSource(1))
	}
	e := &Env{rng: rng}
	e.Reset()
	return e
}

// Reset centers ball and paddle and serves in a random direction with
// |vx| in [0.04, 0.10) and |vy| in [0.02, 0.06).
func (e *Env) Reset() State {
	e.state = State{
		BallX:   0.5,
		BallY:   0.5,
		BallVX:  (0.04 + 0.06*e.rng.Float64()) * e.sign(),
		BallVY:  (0.02 + 0.04*e.rng.Float64()) * e.sign(),
		PaddleY: 0.5,
	}
	return e.state
}

func (e *Env) sign() float64 {
	if e.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// State returns the current observation.
func (e *Env) State() State {
	return e.state
}

// SetState overrides the current observation.
func (e *Env) SetState(s State) {
	e.state = s
}

// Step applies action (-1, 0 or 1), advances the ball one tick and returns
// the new state, the reward and whether the ball was missed.
//
// Positive actions move the paddle toward y = 0.
func (e *Env) Step(action int) (State, float64, bool) {
	s := &e.state
	var reward float64

	if action != ActionStay {
		reward += MovePenalty
	}

	half := PaddleHeight / 2
	s.PaddleY = clamp(s.PaddleY-float64(action)*PaddleSpeed, half, 1-half)

	s.BallX += s.BallVX
	s.BallY += s.BallVY

	if s.BallY <= 0 {
		s.BallY = 0
		s.BallVY = -s.BallVY
	}
	if s.BallY >= 1 {
		s.BallY = 1
		s.BallVY = -s.BallVY
	}
	if s.BallX >= 1 {
		s.BallX = 1
		s.BallVX = -s.BallVX
	}

	if s.BallX <= 0 {
		if s.BallY < s.PaddleY-half || s.BallY > s.PaddleY+half {
			return *s, reward + MissPenalty, true
		}

		s.BallX = 0
		s.BallVX = math.Abs(s.BallVX)
		reward += HitReward
		if math.Abs(s.BallY-s.PaddleY) < CenterZone {
			reward += CenterBonus
		}
	}

	return *s, reward, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
