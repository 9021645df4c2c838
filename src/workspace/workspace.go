// Package workspace holds the per-build state that resolution stages publish
// for the stages that run after them. Each stage owns one entry; an entry is
// written once and read any number of times.
//
// Access goes through typed keys, so a reader gets back the exact type the
// producing stage stored:
//
//	var Key = workspace.NewKey[platform.Set](workspace.StageCheckPlatforms)
//	workspace.Put(ws, Key, set)
//	set, ok := workspace.Get(ws, Key)
package workspace

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Stage identifies the pipeline stage that produced an entry.
type Stage string

const (
	StageCheckPlatforms      Stage = "check_and_set_platforms"
	StageResolveRemoteSource Stage = "resolve_remote_source"
	StageOrchestrateBuild    Stage = "orchestrate_build"
)

// Key binds a stage to the type of the value it publishes.
type Key[T any] struct {
	stage Stage
}

// NewKey returns the key under which stage publishes a T.
func NewKey[T any](stage Stage) Key[T] {
	return Key[T]{stage: stage}
}

// Stage returns the stage the key belongs to.
func (k Key[T]) Stage() Stage { return k.stage }

func (k Key[T]) String() string { return string(k.stage) }

// Workspace is the state of a single build. The zero value is empty and
// ready to use. It is not safe for concurrent use; stages run one after
// another.
type Workspace struct {
	entries map[Stage]any
}

// New returns an empty workspace.
func New() *Workspace {
	return &Workspace{entries: map[Stage]any{}}
}

// Put stores v under k. A second write to the same stage fails with
// ErrAlreadySet and leaves the first value in place.
func Put[T any](w *Workspace, k Key[T], v T) error {
	if w.entries == nil {
		w.entries = map[Stage]any{}
	}
	if _, exists := w.entries[k.stage]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadySet, k.stage)
	}
	w.entries[k.stage] = v
	return nil
}

// Get returns the value stored under k.
func Get[T any](w *Workspace, k Key[T]) (T, bool) {
	var zero T
	raw, ok := w.entries[k.stage]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		// Two keys declared for one stage with different types.
		return zero, false
	}
	return v, true
}

// Stages returns the stages that have published, sorted.
func (w *Workspace) Stages() []Stage {
	stages := make([]Stage, 0, len(w.entries))
	for s := range w.entries {
		stages = append(stages, s)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })
	return stages
}

// MarshalJSON renders every entry keyed by stage name, for hand-off to the
// build stage.
func (w *Workspace) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(w.entries))
	for s, v := range w.entries {
		out[string(s)] = v
	}
	return json.Marshal(out)
}
