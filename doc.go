// Package rtinfo introspects the Go runtime of the running binary and the
// toolchain installation around it, and prints a column-aligned diagnostic
// report for engineers debugging why one installation behaves differently
// from another.
//
// The report covers the runtime build description, the C compiler, linked
// library versions (cryptography, compression, serialization, decimal math,
// database bindings), TLS trust configuration, signal support, companion
// CLI tools and the installed module inventories.
//
// # API Model
//
// rtinfo exposes two pieces:
//   - [Reporter] runs independent probe-and-print steps; each probe absorbs
//     its own failure and degrades to a report line
//   - [SignalProber] finds which signals the platform cannot trap or
//     deliver, using a helper process
//
// # Report
//
//	cfg := rtinfo.DefaultConfig()
//	cfg.Toolchain = rtinfo.LoadToolchain(nil)
//	if err := rtinfo.NewReporter(cfg).Run(); err != nil {
//	    log.Fatal(err) // the signal helper could not be spawned
//	}
//
// # Signal Probe
//
// The prober re-executes the current binary with --signal-helper. The
// program must dispatch that flag to [RunSignalHelper] before doing
// anything else:
//
//	res, err := rtinfo.UnsupportedSignals()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Unsupported) // e.g. "" on Linux, "HUP TERM USR1 USR2" on Windows
//
// # Bindings
//
// Libraries appear in the report through a [Registry] of [BindingSpec]
// entries registered at init time. Versions come from the binary's build
// info. Building with the rtinfo_minimal tag links no bindings, and every
// library probe reports "NOT FOUND!".
package rtinfo
