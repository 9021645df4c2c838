package remotesource

import (
	"fmt"
	"sort"

	"github.com/sofmeright/prebuild/src/cachito"
)

const (
	// RemoteSourceDir is where the bundle is unpacked inside the build
	// container.
	RemoteSourceDir = "/remote-source"

	// EnvFilename is the generated shell environment file inside
	// RemoteSourceDir.
	EnvFilename = "cachito.env"

	// EnvFileArg is the build argument that points at the environment file.
	EnvFileArg = "CACHITO_ENV_FILE"
)

// BuildArgs converts the request's environment variables into build
// arguments. Path values are placed under RemoteSourceDir. An unknown kind
// fails the whole conversion. The result always carries EnvFileArg.
func BuildArgs(vars map[string]cachito.EnvVar) (map[string]string, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make(map[string]string, len(vars)+1)
	for _, name := range names {
		v := vars[name]
		switch v.Kind {
		case cachito.KindLiteral:
			args[name] = v.Value
		case cachito.KindPath:
			args[name] = RemoteSourceDir + "/" + v.Value
		default:
			return nil, fmt.Errorf("%w: unknown kind %s got from remote source service (variable %s)", ErrRemoteSource, v.Kind, name)
		}
	}

	args[EnvFileArg] = RemoteSourceDir + "/" + EnvFilename
	return args, nil
}
