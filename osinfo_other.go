//go:build !unix && !windows

package rtinfo

import "runtime"

func osRelease() string {
	return runtime.GOOS + " " + runtime.GOARCH
}
