package pipelinectx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		EnvProject:  "demo",
		EnvTaskType: "lighting",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	c := FromEnv(lookup)

	assert.Equal(t, Context{Project: "demo", TaskType: "lighting"}, c)
}

func TestOverride_KeepsFieldsNotSetOnTop(t *testing.T) {
	// Arrange
	base := Context{Project: "demo", User: "alice", Extra: map[string]any{"site": "paris"}}
	top := Context{User: "bob", Task: "sh010", Extra: map[string]any{"shot": 10}}

	// Act
	merged, err := base.Override(top)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "demo", merged.Project)
	assert.Equal(t, "bob", merged.User)
	assert.Equal(t, "sh010", merged.Task)
	assert.Equal(t, map[string]any{"site": "paris", "shot": 10}, merged.Extra)
	assert.Equal(t, map[string]any{"site": "paris"}, base.Extra, "the receiver is not modified")
}

func TestMetadata(t *testing.T) {
	c := Context{
		Project: "demo",
		User:    "alice",
		Extra:   map[string]any{"site": "paris", KeyTask: "shadowed"},
	}

	md := c.Metadata()

	assert.Equal(t, map[string]any{"project": "demo", "user": "alice", "site": "paris"}, md)
	md["project"] = "changed"
	assert.Equal(t, "demo", c.Metadata()["project"], "every call returns a fresh map")
}
