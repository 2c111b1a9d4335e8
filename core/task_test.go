package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlan_AssignsListIndices(t *testing.T) {
	plan := NewPlan([]Task{
		{Description: "search web", AgentName: "web_search", Index: 42},
		{Description: "analyze", AgentName: "data_analysis", DependsOn: []int{0}},
	})

	assert.Equal(t, 0, plan[0].Index)
	assert.Equal(t, 1, plan[1].Index)
	assert.Equal(t, []int{0}, plan[1].DependsOn)
}

func TestPlan_AgentNames(t *testing.T) {
	plan := NewPlan([]Task{
		{AgentName: "web_search"},
		{AgentName: "data_analysis"},
		{AgentName: "web_search"},
	})
	assert.Equal(t, []string{"web_search", "data_analysis"}, plan.AgentNames())
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
