//go:build windows && !rtinfo_minimal

package rtinfo

import (
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

func init() {
	Register(BindingSpec{
		Import: "golang.org/x/sys/windows",
		Module: "golang.org/x/sys",
		Load: func() error {
			_, err := windows.GetVersion()
			return err
		},
	})

	Register(BindingSpec{
		Import: "golang.org/x/sys/windows/registry",
		Module: "golang.org/x/sys",
		Load: func() error {
			k, err := registry.OpenKey(registry.LOCAL_MACHINE, currentVersionKey, registry.QUERY_VALUE)
			if err != nil {
				return err
			}
			return k.Close()
		},
	})
}
