package agent

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lukechampine.com/frand"
)

var ErrMissingProperty = errors.New("property is not set")

// Args is the parsed form of an agent's "key=value key=value" argument
// string. Known keys land in typed fields; everything else is kept in
// Extra, verbatim.
type Args struct {
	Name string
	Role string
	// Seed is nil when the agent should seed itself from system entropy.
	Seed     *uint64
	Alpha    *float64
	Decay    *float64
	Init     *float64
	Symmetry *int
	Patterns string
	Load     string
	Save     string
	Extra    map[string]string
}

// ParseArgs parses a whitespace separated list of key=value pairs. A pair
// without "=" sets the key to the empty string. Later pairs override
// earlier ones.
func ParseArgs(s string) (Args, error) {
	a := Args{Extra: map[string]string{}}
	for _, pair := range strings.Fields(s) {
		key, value, _ := strings.Cut(pair, "=")
		if err := a.Set(key, value); err != nil {
			return a, err
		}
	}
	return a, nil
}

// Set assigns one key. Numeric keys must parse.
func (a *Args) Set(key, value string) error {
	var err error
	switch key {
	case "name":
		a.Name = value
	case "role":
		a.Role = value
	case "seed":
		var v uint64
		v, err = strconv.ParseUint(value, 10, 64)
		a.Seed = &v
	case "alpha":
		var v float64
		v, err = strconv.ParseFloat(value, 64)
		a.Alpha = &v
	case "decay":
		var v float64
		v, err = strconv.ParseFloat(value, 64)
		a.Decay = &v
	case "init":
		var v float64
		v, err = strconv.ParseFloat(value, 64)
		a.Init = &v
	case "symmetry":
		var v int
		v, err = strconv.Atoi(value)
		a.Symmetry = &v
	case "patterns":
		a.Patterns = value
	case "load":
		a.Load = value
	case "save":
		a.Save = value
	default:
		if a.Extra == nil {
			a.Extra = map[string]string{}
		}
		a.Extra[key] = value
	}
	if err != nil {
		return fmt.Errorf("bad value for %s: %w", key, err)
	}
	return nil
}

// Property returns any key as a string, known or not.
func (a *Args) Property(key string) (string, bool) {
	switch key {
	case "name":
		return a.Name, a.Name != ""
	case "role":
		return a.Role, a.Role != ""
	case "seed":
		if a.Seed == nil {
			return "", false
		}
		return strconv.FormatUint(*a.Seed, 10), true
	case "alpha":
		return formatFloat(a.Alpha)
	case "decay":
		return formatFloat(a.Decay)
	case "init":
		return formatFloat(a.Init)
	case "symmetry":
		if a.Symmetry == nil {
			return "", false
		}
		return strconv.Itoa(*a.Symmetry), true
	case "patterns":
		return a.Patterns, a.Patterns != ""
	case "load":
		return a.Load, a.Load != ""
	case "save":
		return a.Save, a.Save != ""
	}
	v, ok := a.Extra[key]
	return v, ok
}

// MustProperty is Property for keys the caller knows are set. Asking for
// a missing key is a programming error.
func (a *Args) MustProperty(key string) string {
	v, ok := a.Property(key)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrMissingProperty, key))
	}
	return v
}

func formatFloat(f *float64) (string, bool) {
	if f == nil {
		return "", false
	}
	return strconv.FormatFloat(*f, 'g', -1, 64), true
}

// SeedBytes expands a numeric seed into the 32 bytes frand needs.
func SeedBytes(seed uint64) [32]byte {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	return s
}

// seedBytes returns the agent's configured seed, or fresh entropy.
func (a *Args) seedBytes() [32]byte {
	if a.Seed != nil {
		return SeedBytes(*a.Seed)
	}
	var s [32]byte
	copy(s[:], frand.Bytes(32))
	return s
}
