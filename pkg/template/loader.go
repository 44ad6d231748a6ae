package template

import (
	"bytes"
	"encoding/hex"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
)

var (
	addressRE = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	nameRE    = regexp.MustCompile(`^[0-9A-Za-z ]{1,64}$`)
	identRE   = regexp.MustCompile(`^[0-9A-Za-z_]{1,64}$`)
)

var reservedRoleNames = map[string]bool{"system": true, "deployer": true}

// Result is the loader's success output: the typed IR, its canonical byte
// image, and the derived system ID.
type Result struct {
	Template ir.Template
	Bytes    []byte
	SystemID [32]byte
}

// requiredSections are spec.md:76's six top-level keys: "Missing section ⇒
// fail," confirmed against the original's own serde-derive behavior
// (parser.rs's test_parse_missing_field), which rejects a document the
// moment a required field is absent rather than defaulting it to empty.
var requiredSections = []string{"system", "pool", "rules", "rights", "time", "oracles"}

// Load parses, validates and canonicalizes a template document (§4.2).
func Load(text []byte) (Result, error) {
	var present map[string]yaml.Node
	if err := yaml.Unmarshal(text, &present); err != nil {
		return Result{}, fvlerrors.New(fvlerrors.KindParseError, err.Error())
	}
	for _, name := range requiredSections {
		if _, ok := present[name]; !ok {
			return Result{}, fvlerrors.WithPath(fvlerrors.KindValidationError, name, "missing required section")
		}
	}

	var raw rawTemplate
	dec := yaml.NewDecoder(bytes.NewReader(text))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return Result{}, fvlerrors.New(fvlerrors.KindParseError, err.Error())
	}

	tpl, err := validate(raw)
	if err != nil {
		return Result{}, err
	}

	b := Canonicalize(tpl)
	id := SystemID(b)
	return Result{Template: tpl, Bytes: b, SystemID: id}, nil
}

func requireSection(present bool, name string) error {
	if !present {
		return fvlerrors.WithPath(fvlerrors.KindValidationError, name, "missing required section")
	}
	return nil
}

func parseAddressField(path, s string) (ir.Address, error) {
	var a ir.Address
	if !addressRE.MatchString(s) {
		return a, fvlerrors.WithPath(fvlerrors.KindBadAddress, path, "address must match ^0x[0-9a-fA-F]{40}$")
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return a, fvlerrors.WithPath(fvlerrors.KindBadAddress, path, err.Error())
	}
	copy(a[:], b)
	return a, nil
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
