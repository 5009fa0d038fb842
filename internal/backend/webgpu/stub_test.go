//go:build !windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simflux-ml/simflux/internal/core"
)

func TestNew_Unavailable(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	_, err = Register()
	assert.Error(t, err)
}

func TestStub_OperationsReportNotSupported(t *testing.T) {
	var b WebGPUBackend

	defer func() {
		r := recover()
		_, ok := r.(*core.NotSupportedError)
		assert.True(t, ok)
	}()
	b.Add(nil, nil)
}
