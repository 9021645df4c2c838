// Package platform decides which hardware platforms a build targets.
//
// The koji build target is the primary source: its build tag lists the
// architectures the build must cover. A scratch or isolated build may
// replace that list with an explicit user selection. The chosen list is then
// narrowed to platforms that have an enabled build cluster and to the limits
// the repository declares in container.yaml.
package platform
