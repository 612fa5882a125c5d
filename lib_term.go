//go:build !rtinfo_minimal

package rtinfo

import (
	"os"

	"golang.org/x/term"
)

func init() {
	Register(BindingSpec{
		Import: "golang.org/x/term",
		Attrs: map[string]func() (string, error){
			"stdout": func() (string, error) {
				if term.IsTerminal(int(os.Stdout.Fd())) {
					return "tty", nil
				}
				return "pipe", nil
			},
		},
	})
}
