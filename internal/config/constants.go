package config

// Version is the current sxpc version.
// Can be overridden at build time via -ldflags -X.
var Version = "0.3.1"

// DefaultOutputFile is where the emitted assembly goes unless
// overridden by sxpc.yaml or -o.
const DefaultOutputFile = "out.asm"

const SourceFileExt = ".sx"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".sx", ".sxp"}

// ProjectConfigName is the per-project configuration file looked up
// next to the source file.
const ProjectConfigName = "sxpc.yaml"

// CacheDirName is the dot-directory holding the compilation cache.
const CacheDirName = ".sxpc"

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
