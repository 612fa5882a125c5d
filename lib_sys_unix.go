//go:build unix && !rtinfo_minimal

package rtinfo

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

func init() {
	Register(BindingSpec{
		Import: "golang.org/x/sys/unix",
		Module: "golang.org/x/sys",
		Load: func() error {
			if unix.Getpagesize() <= 0 {
				return fmt.Errorf("invalid page size %d", unix.Getpagesize())
			}
			return nil
		},
		Attrs: map[string]func() (string, error){
			"pagesize": func() (string, error) {
				return strconv.Itoa(unix.Getpagesize()), nil
			},
		},
	})
}
