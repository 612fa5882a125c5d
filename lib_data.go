//go:build !rtinfo_minimal

package rtinfo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
	"github.com/tidwall/jsonc"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func init() {
	Register(BindingSpec{
		Import: "golang.org/x/mod",
		Load: func() error {
			if !semver.IsValid(semver.Canonical("v1.2")) {
				return errors.New("semver rejects v1.2")
			}
			return nil
		},
	})

	Register(BindingSpec{
		Import: "github.com/shopspring/decimal",
		Load: func() error {
			sum := decimal.NewFromFloat(0.1).Add(decimal.NewFromFloat(0.2))
			if !sum.Equal(decimal.RequireFromString("0.3")) {
				return fmt.Errorf("0.1 + 0.2 = %s", sum)
			}
			return nil
		},
		Attrs: map[string]func() (string, error){
			"precision": func() (string, error) {
				return strconv.Itoa(int(decimal.DivisionPrecision)), nil
			},
		},
	})

	Register(BindingSpec{
		Import: "zombiezen.com/go/sqlite",
		Load: func() error {
			_, err := sqliteVersion()
			return err
		},
		Attrs: map[string]func() (string, error){
			"native": sqliteVersion,
		},
	})

	Register(BindingSpec{
		Import: "gopkg.in/yaml.v3",
		Load: func() error {
			return roundTripDoc(yaml.Marshal, yaml.Unmarshal)
		},
	})

	Register(BindingSpec{
		Import: "github.com/fxamacker/cbor/v2",
		Load: func() error {
			return roundTripDoc(cbor.Marshal, cbor.Unmarshal)
		},
	})

	Register(BindingSpec{
		Import: "github.com/tidwall/jsonc",
		Load: func() error {
			src := []byte("{\n  // comment\n  \"name\": \"rtinfo\", /* trailing */\n}")
			if !json.Valid(jsonc.ToJSON(src)) {
				return errors.New("jsonc produced invalid JSON")
			}
			return nil
		},
	})
}

// sqliteVersion returns the version of the SQLite library compiled into
// the driver.
func sqliteVersion() (string, error) {
	conn, err := sqlite.OpenConn(":memory:")
	if err != nil {
		return "", fmt.Errorf("open sqlite: %w", err)
	}
	defer conn.Close()

	var version string
	err = sqlitex.ExecuteTransient(conn, "SELECT sqlite_version();", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		return "", fmt.Errorf("query sqlite version: %w", err)
	}
	return version, nil
}

type probeDoc struct {
	Name    string   `yaml:"name" cbor:"name"`
	Signals []string `yaml:"signals" cbor:"signals"`
}

// roundTripDoc encodes and decodes a small document with a codec.
func roundTripDoc(marshal func(any) ([]byte, error), unmarshal func([]byte, any) error) error {
	in := probeDoc{Name: "rtinfo", Signals: CandidateSignals}
	data, err := marshal(in)
	if err != nil {
		return err
	}
	var out probeDoc
	if err := unmarshal(data, &out); err != nil {
		return err
	}
	if out.Name != in.Name || len(out.Signals) != len(in.Signals) {
		return fmt.Errorf("round trip mismatch: %q", bytes.TrimSpace(data))
	}
	return nil
}
