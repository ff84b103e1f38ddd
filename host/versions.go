package host

import (
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
)

type Versions map[string]string

const develVersion = "(devel)"

var (
	runtimeVersions     Versions
	runtimeVersionsOnce sync.Once
)

// RuntimeVersions reports the Go toolchain, the host module and each linked
// dependency. The result is computed once per process; callers get a copy.
func RuntimeVersions() Versions {
	runtimeVersionsOnce.Do(func() {
		info, _ := debug.ReadBuildInfo()
		runtimeVersions = versionsFrom(runtime.Version(), info)
	})

	return runtimeVersions.Clone()
}

func (v Versions) Clone() Versions {
	clone := make(Versions, len(v))
	for key, value := range v {
		clone[key] = value
	}

	return clone
}

func versionsFrom(goVersion string, info *debug.BuildInfo) Versions {
	versions := Versions{"go": goVersion, "host": develVersion}
	if info == nil {
		return versions
	}

	if info.Main.Version != "" {
		versions["host"] = info.Main.Version
	}

	for _, dep := range info.Deps {
		module := dep
		if dep.Replace != nil {
			module = dep.Replace
		}

		key := VersionKey(dep.Path)
		if _, taken := versions[key]; taken {
			continue
		}
		versions[key] = module.Version
	}

	return versions
}

// VersionKey turns a module path into a snake_case key:
// "github.com/goccy/go-json" becomes "go_json", "github.com/oklog/ulid/v2" becomes "ulid".
func VersionKey(path string) string {
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if isMajorSuffix(last) && len(segments) > 1 {
		last = segments[len(segments)-2]
	}

	return strcase.ToSnake(last)
}

func isMajorSuffix(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}

	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
