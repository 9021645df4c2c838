package remotesource

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sofmeright/prebuild/src/config"
)

// TaskIDLabel is the build label carrying the koji task id.
const TaskIDLabel = "koji-task-id"

// OwnerLookup resolves a koji task to the name of the user who submitted
// it. *koji.Client implements it.
type OwnerLookup interface {
	TaskOwner(ctx context.Context, taskID int) (string, error)
}

// BuildInfo is the part of the build object the resolver reads. A nil
// Metadata means the build object had no metadata at all.
type BuildInfo struct {
	Metadata *ObjectMeta
}

// ObjectMeta is build object metadata.
type ObjectMeta struct {
	Labels map[string]string `json:"labels"`
}

// ParseBuildInfo decodes a build object, as found in the BUILD environment
// variable of a build pod. Only a document that is not a JSON object is an
// error. Metadata or labels of any other shape yield no labels, and label
// values that are neither strings nor numbers are dropped.
func ParseBuildInfo(data []byte) (*BuildInfo, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decoding build object: %w", err)
	}

	info := &BuildInfo{}
	raw, ok := top["metadata"]
	if !ok {
		return info, nil
	}
	info.Metadata = &ObjectMeta{Labels: map[string]string{}}

	var meta map[string]json.RawMessage
	if err := json.Unmarshal(raw, &meta); err != nil {
		return info, nil
	}
	var labels map[string]json.RawMessage
	if err := json.Unmarshal(meta["labels"], &labels); err != nil {
		return info, nil
	}
	for name, v := range labels {
		if value, ok := labelValue(v); ok {
			info.Metadata.Labels[name] = value
		}
	}
	return info, nil
}

// labelValue renders a string or number label as text.
func labelValue(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// requester names the user the request is submitted on behalf of. Missing
// or unusable build metadata falls back to the configured unknown user.
func (r *Resolver) requester(ctx context.Context, build *BuildInfo) (string, error) {
	log := r.logger()
	unknown := r.Cachito.UnknownUser
	if unknown == "" {
		unknown = config.DefaultUnknownUser
	}

	if build == nil || build.Metadata == nil {
		log.Warn("failed to fetch koji owner: no build metadata", "user", unknown)
		return unknown, nil
	}

	label := build.Metadata.Labels[TaskIDLabel]
	taskID, err := strconv.Atoi(label)
	if err != nil {
		log.Warn("unable to get koji user: invalid koji task id label", "label", label, "user", unknown)
		return unknown, nil
	}

	if r.Owners == nil {
		log.Warn("unable to get koji user: koji is not configured", "task", taskID, "user", unknown)
		return unknown, nil
	}

	owner, err := r.Owners.TaskOwner(ctx, taskID)
	if err != nil {
		return "", fmt.Errorf("looking up owner of koji task %d: %w", taskID, err)
	}
	return owner, nil
}
