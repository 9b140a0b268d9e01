package nn_test

import (
	"testing"

	"github.com/born-ml/tinynn/internal/nn"
	"github.com/born-ml/tinynn/internal/tensor"
)

func TestParameter(t *testing.T) {
	data := mustTensor(t, []float32{1, 2, 3}, 3)
	param := nn.NewParameter("test_param", data)

	if param.Name() != "test_param" {
		t.Errorf("Name() = %s, want test_param", param.Name())
	}
	if param.Tensor() != data {
		t.Error("Tensor() should return the original tensor")
	}
	if param.Grad() != nil {
		t.Error("Grad() should initially be nil")
	}

	grad := tensor.Full[float32](0.1, 3)
	param.SetGrad(grad)
	if param.Grad() != grad {
		t.Error("SetGrad() should set the gradient")
	}

	param.ZeroGrad()
	if param.Grad() != nil {
		t.Error("ZeroGrad() should clear the gradient")
	}
}
