package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	type entity struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}

	snap := Snapshot(entity{ID: "r1", Status: "pending"})
	assert.Equal(t, map[string]any{"id": "r1", "status": "pending"}, snap)

	assert.Nil(t, Snapshot(nil))
	assert.Nil(t, Snapshot([]string{"not", "an", "object"}))
	assert.Nil(t, Snapshot(make(chan int)))
}
