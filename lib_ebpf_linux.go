//go:build linux && !rtinfo_minimal

package rtinfo

import (
	"errors"
	"os"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/features"
)

func init() {
	Register(BindingSpec{
		Import: "github.com/cilium/ebpf",
		Load: func() error {
			// The library loads even when the kernel or the caller's
			// privileges rule out kprobes.
			err := features.HaveProgramType(ebpf.Kprobe)
			if err == nil || errors.Is(err, ebpf.ErrNotSupported) || errors.Is(err, os.ErrPermission) {
				return nil
			}
			return err
		},
	})
}
