//go:build unix

package rtinfo

import (
	"strings"

	"golang.org/x/sys/unix"
)

// osRelease returns "sysname release machine" from uname(2).
func osRelease() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "unknown"
	}
	return strings.Join([]string{
		unix.ByteSliceToString(uname.Sysname[:]),
		unix.ByteSliceToString(uname.Release[:]),
		unix.ByteSliceToString(uname.Machine[:]),
	}, " ")
}
