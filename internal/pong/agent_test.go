package pong_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tinynn/internal/nn"
	"github.com/born-ml/tinynn/internal/pong"
	"github.com/born-ml/tinynn/internal/tensor"
)

// trackingModel scores up by (ball_y - paddle_y) and down by the negative.
func trackingModel(t *testing.T) *nn.Network[float32] {
	t.Helper()
	layer := nn.NewDense[float32](3, 3, nn.WithInitializer(nn.Zeros[float32]()))
	require.NoError(t, layer.Weight().Tensor().Assign(
		0, 0, 0,
		-10, 0, 10,
		10, 0, -10,
	))
	return nn.NewNetwork[float32](layer)
}

func TestActionFromScores(t *testing.T) {
	tests := []struct {
		scores []float32
		want   int
	}{
		{[]float32{0.9, 0.1, 0.2}, pong.ActionDown},
		{[]float32{0.1, 0.9, 0.2}, pong.ActionStay},
		{[]float32{0.1, 0.2, 0.9}, pong.ActionUp},
		{[]float32{0.5, 0.5, 0.1}, pong.ActionStay},
		{[]float32{0.1, 0.7, 0.7}, pong.ActionStay},
		{[]float32{0.8, 0.2, 0.8}, pong.ActionStay},
		{[]float32{0, 0, 0}, pong.ActionStay},
		{[]float32{0.3, 0.3, 0.9}, pong.ActionUp},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pong.ActionFromScores(tt.scores), "%v", tt.scores)
	}
}

func TestAgent_Act(t *testing.T) {
	agent := pong.NewAgent(trackingModel(t))

	action, err := agent.Act(pong.State{BallX: 0.3, BallY: 0.8, PaddleY: 0.5})
	require.NoError(t, err)
	assert.Equal(t, pong.ActionUp, action)

	action, err = agent.Act(pong.State{BallX: 0.3, BallY: 0.2, PaddleY: 0.5})
	require.NoError(t, err)
	assert.Equal(t, pong.ActionDown, action)

	action, err = agent.Act(pong.State{BallX: 0.3, BallY: 0.5, PaddleY: 0.5})
	require.NoError(t, err)
	assert.Equal(t, pong.ActionStay, action, "all scores tie")
}

func TestAgent_RejectsWrongOutputWidth(t *testing.T) {
	agent := pong.NewAgent(nn.NewNetwork[float32](nn.NewDense[float32](3, 2)))
	_, err := agent.Act(pong.State{})
	require.ErrorIs(t, err, tensor.ErrInvalidArgument)
}

func TestObserve(t *testing.T) {
	x := pong.Observe(pong.State{BallX: 0.25, BallY: 0.5, BallVX: 9, BallVY: 9, PaddleY: 0.75})
	assert.Equal(t, tensor.Shape{1, 3}, x.Shape())
	assert.Equal(t, []float32{0.25, 0.5, 0.75}, x.Data())
}

func TestSimulate(t *testing.T) {
	agent := pong.NewAgent(trackingModel(t))
	env := pong.NewEnv(rand.New(rand.NewSource(4)))

	var ticks int
	res, err := pong.Simulate(agent, env, 200, func(step, action int, reward float64, s pong.State) {
		assert.Equal(t, ticks, step)
		ticks++
		assert.True(t, s.PaddleY >= 0.1-1e-9 && s.PaddleY <= 0.9+1e-9)
	})
	require.NoError(t, err)

	assert.Equal(t, 200, res.Steps)
	assert.Equal(t, 200, ticks)
	assert.Positive(t, res.Hits+res.Misses, "the ball reaches the paddle wall within 200 ticks")
}
