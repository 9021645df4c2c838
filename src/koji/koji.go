// Package koji is a minimal client for the koji hub calls made while
// resolving build inputs: the event-pinned target and tag lookups that
// yield a build's architectures, and the task-owner lookup that identifies
// who requested a build.
package koji

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/sofmeright/prebuild/src/version"
)

var ErrNotFound = errors.New("koji: not found")

// Event is a point in the hub's history. Queries pinned to one event see a
// consistent snapshot.
type Event struct {
	ID int     `xmlrpc:"id"`
	TS float64 `xmlrpc:"ts"`
}

// BuildTarget maps a target name to its build and destination tags.
type BuildTarget struct {
	ID           int    `xmlrpc:"id"`
	Name         string `xmlrpc:"name"`
	BuildTag     int    `xmlrpc:"build_tag"`
	BuildTagName string `xmlrpc:"build_tag_name"`
	DestTag      int    `xmlrpc:"dest_tag"`
	DestTagName  string `xmlrpc:"dest_tag_name"`
}

// BuildConfig is the inherited configuration of a tag. Arches is a
// space-separated list.
type BuildConfig struct {
	ID     int    `xmlrpc:"id"`
	Name   string `xmlrpc:"name"`
	Arches string `xmlrpc:"arches"`
}

// TaskInfo describes a hub task.
type TaskInfo struct {
	ID     int    `xmlrpc:"id"`
	Method string `xmlrpc:"method"`
	Owner  int    `xmlrpc:"owner"`
}

// User is a hub user.
type User struct {
	ID   int    `xmlrpc:"id"`
	Name string `xmlrpc:"name"`
}

// Client calls a koji hub over XML-RPC.
type Client struct {
	hubURL string
	http   *http.Client
}

// NewClient returns a client for the hub at hubURL.
func NewClient(hubURL string) *Client {
	return &Client{
		hubURL: hubURL,
		http:   &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) call(ctx context.Context, method string, result any, params ...any) error {
	body, err := xmlrpc.EncodeMethodCall(method, params...)
	if err != nil {
		return fmt.Errorf("koji %s: encoding call: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hubURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("koji %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("koji %s: %d %s", method, resp.StatusCode, msg)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("koji %s: reading response: %w", method, err)
	}
	if err := decodeResponse(data, result); err != nil {
		return fmt.Errorf("koji %s: %w", method, err)
	}
	return nil
}

// GetLastEvent returns the most recent hub event.
func (c *Client) GetLastEvent(ctx context.Context) (*Event, error) {
	var ev Event
	if err := c.call(ctx, "getLastEvent", &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// GetBuildTarget looks up a build target as of event.
func (c *Client) GetBuildTarget(ctx context.Context, name string, event int) (*BuildTarget, error) {
	var target BuildTarget
	if err := c.call(ctx, "getBuildTarget", &target, name, keywordArgs(map[string]any{"event": event})); err != nil {
		return nil, err
	}
	return &target, nil
}

// GetBuildConfig returns the configuration of tag as of event.
func (c *Client) GetBuildConfig(ctx context.Context, tag int, event int) (*BuildConfig, error) {
	var conf BuildConfig
	if err := c.call(ctx, "getBuildConfig", &conf, tag, keywordArgs(map[string]any{"event": event})); err != nil {
		return nil, err
	}
	return &conf, nil
}

// GetTaskInfo returns the task with the given id.
func (c *Client) GetTaskInfo(ctx context.Context, id int) (*TaskInfo, error) {
	var info TaskInfo
	if err := c.call(ctx, "getTaskInfo", &info, id); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetUser returns the user with the given id.
func (c *Client) GetUser(ctx context.Context, id int) (*User, error) {
	var user User
	if err := c.call(ctx, "getUser", &user, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// TaskOwner returns the name of the user who owns task taskID.
func (c *Client) TaskOwner(ctx context.Context, taskID int) (string, error) {
	info, err := c.GetTaskInfo(ctx, taskID)
	if err != nil {
		return "", err
	}
	user, err := c.GetUser(ctx, info.Owner)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}
