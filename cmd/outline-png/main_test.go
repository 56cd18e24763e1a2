package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSceneView_AllCubesVisible(t *testing.T) {
	for _, n := range []int{1, 3, 5} {
		v := sceneView(640, 360, n)
		assert.Len(t, v.Items, n)
		assert.Len(t, v.Visible(), n, "%d cubes", n)
	}
}
