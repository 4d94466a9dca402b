// Package build exposes build-time information injected via ldflags.
package build

// Info holds version details stamped into the binary.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}
