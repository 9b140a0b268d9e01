package pong

import (
	"fmt"

	"github.com/born-ml/tinynn/internal/inference"
	"github.com/born-ml/tinynn/internal/tensor"
)

// NumActions is the width of the model output: scores for down, stay, up.
const NumActions = 3

// Agent picks actions from model scores.
type Agent struct {
	model inference.Predictor[float32]
}

// NewAgent wraps a model mapping [batch, 3] observations to [batch, 3] scores.
func NewAgent(model inference.Predictor[float32]) *Agent {
	return &Agent{model: model}
}

// Observe encodes s as the 1×3 model input (ball_x, ball_y, paddle_y).
func Observe(s State) *tensor.Tensor[float32] {
	x := tensor.New[float32](1, 3)
	_ = x.Assign(float32(s.BallX), float32(s.BallY), float32(s.PaddleY))
	return x
}

// Act returns the action for s.
func (a *Agent) Act(s State) (int, error) {
	out, err := a.model.Predict(Observe(s))
	if err != nil {
		return 0, err
	}
	if !out.Shape().Equal(tensor.Shape{1, NumActions}) {
		return 0, fmt.Errorf("%w: agent model returned %v, want [1 %d]",
			tensor.ErrInvalidArgument, out.Shape(), NumActions)
	}
	return ActionFromScores(out.Raw()), nil
}

// ActionFromScores maps the index of the highest score to an action
// (index - 1). If any other score equals the highest, the agent stays.
func ActionFromScores[T tensor.Float](scores []T) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	for i, v := range scores {
		if i != best && v == scores[best] {
			return ActionStay
		}
	}
	return best - 1
}

// Result summarizes a simulation.
type Result struct {
	Steps       int
	Hits        int
	Misses      int
	TotalReward float64
}

// Simulate lets agent play env for steps ticks, resetting after every miss.
// Each tick is reported to onStep when it is non-nil.
func Simulate(agent *Agent, env *Env, steps int, onStep func(step, action int, reward float64, s State)) (Result, error) {
	var res Result
	s := env.State()

	for step := 0; step < steps; step++ {
		action, err := agent.Act(s)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}

		var reward float64
		var done bool
		s, reward, done = env.Step(action)

		res.Steps++
		res.TotalReward += reward
		switch {
		case done:
			res.Misses++
		case reward > 0:
			res.Hits++
		}

		if onStep != nil {
			onStep(step, action, reward, s)
		}
		if done {
			s = env.Reset()
		}
	}
	return res, nil
}
