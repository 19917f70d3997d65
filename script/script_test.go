package script_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"radioflow/blocks"
	"radioflow/graph"
	"radioflow/script"
)

const doc = `
blocks:
  - id: src
    class: float32_const_source
    params:
      data: [1, 2, 3]
  - id: scale
    class: scale_transform
    params:
      factor: 2.0
connections:
  - from: src.out
    to: scale.in
`

func TestLoadBuildsConnectedGraph(t *testing.T) {
	reg := script.NewRegistry()
	blocks.Register(reg)

	g, err := script.Load(strings.NewReader(doc), reg, nil)
	require.NoError(t, err)

	_, err = graph.Infer(g)
	require.NoError(t, err)
}

func TestLoadRejectsUnknownClass(t *testing.T) {
	reg := script.NewRegistry()
	_, err := script.Load(strings.NewReader(doc), reg, nil)
	require.Error(t, err)
}

func TestLoadRejectsDanglingConnection(t *testing.T) {
	reg := script.NewRegistry()
	blocks.Register(reg)
	bad := strings.Replace(doc, "to: scale.in", "to: missing.in", 1)
	_, err := script.Load(strings.NewReader(bad), reg, nil)
	require.Error(t, err)
}
