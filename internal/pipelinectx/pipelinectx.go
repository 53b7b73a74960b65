// Package pipelinectx captures the ambient pipeline context (project, task,
// user) an action is created in. The context is gathered once, from the
// environment and the application configuration, and handed to the action
// as an immutable snapshot.
package pipelinectx

import (
	"maps"

	"dario.cat/mergo"
)

// Environment variables read by FromEnv.
const (
	EnvProject  = "ACTIONGRID_PROJECT"
	EnvTask     = "ACTIONGRID_TASK"
	EnvTaskType = "ACTIONGRID_TASK_TYPE"
	EnvUser     = "ACTIONGRID_USER"
)

// Metadata keys of the snapshot.
const (
	KeyProject  = "project"
	KeyTask     = "task"
	KeyTaskType = "task_type"
	KeyUser     = "user"
)

// Context is the pipeline context of a run.
type Context struct {
	Project  string
	Task     string
	TaskType string
	User     string
	// Extra holds additional metadata keys, e.g. from the config file.
	Extra map[string]any
}

// FromEnv reads the context from environment variables through lookup,
// typically os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) Context {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return Context{
		Project:  get(EnvProject),
		Task:     get(EnvTask),
		TaskType: get(EnvTaskType),
		User:     get(EnvUser),
	}
}

// Override returns c with every non-empty field of over applied on top.
func (c Context) Override(over Context) (Context, error) {
	out := c
	out.Extra = maps.Clone(c.Extra)
	if err := mergo.Merge(&out, over, mergo.WithOverride); err != nil {
		return c, err
	}
	return out, nil
}

// Metadata returns the context as a fresh metadata map. Empty fields are
// left out; Extra keys never shadow the named fields.
func (c Context) Metadata() map[string]any {
	md := maps.Clone(c.Extra)
	if md == nil {
		md = make(map[string]any)
	}
	for key, value := range map[string]string{
		KeyProject:  c.Project,
		KeyTask:     c.Task,
		KeyTaskType: c.TaskType,
		KeyUser:     c.User,
	} {
		if value != "" {
			md[key] = value
		} else {
			delete(md, key)
		}
	}
	return md
}
