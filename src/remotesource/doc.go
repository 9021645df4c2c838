// Package remotesource resolves a build's remote source: the repository
// whose dependencies Cachito prefetches ahead of the build.
//
// Resolution submits the repository declared in container.yaml, waits for
// the request to finish, downloads the bundle into the build directory, and
// turns the request's environment variables into build arguments. The
// build arguments and bundle URLs are published as worker-build overrides
// so every per-platform build consumes the same bundle.
package remotesource
