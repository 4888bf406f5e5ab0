package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Magic prefixes every encoded module.
var Magic = []byte("\x00yrxw")

// bump when the encoded layout changes
const schemaVersion uint16 = 1

var (
	ErrBadMagic  = errors.New("wasm: not an encoded module")
	ErrBadSchema = errors.New("wasm: unsupported module schema")
)

type payload struct {
	Schema uint16  `msgpack:"schema"`
	Module *Module `msgpack:"module"`
}

// EmitBinary encodes the module.
func (m *Module) EmitBinary() []byte {
	var buf bytes.Buffer
	buf.Write(Magic)
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&payload{Schema: schemaVersion, Module: m}); err != nil {
		// кодируются только наши собственные типы
		panic(fmt.Errorf("wasm: encode: %w", err))
	}
	return buf.Bytes()
}

// EmitFile writes EmitBinary to path.
func (m *Module) EmitFile(path string) error {
	if err := os.WriteFile(path, m.EmitBinary(), 0o644); err != nil {
		return fmt.Errorf("write module %s: %w", path, err)
	}
	return nil
}

// DecodeBinary parses and validates an encoded module.
func DecodeBinary(data []byte) (*Module, error) {
	if !bytes.HasPrefix(data, Magic) {
		return nil, ErrBadMagic
	}
	var p payload
	if err := msgpack.Unmarshal(data[len(Magic):], &p); err != nil {
		return nil, fmt.Errorf("wasm: decode: %w", err)
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadSchema, p.Schema)
	}
	if p.Module == nil {
		return nil, errors.New("wasm: decode: empty payload")
	}
	if err := Validate(p.Module); err != nil {
		return nil, fmt.Errorf("wasm: decoded module is invalid: %w", err)
	}
	return p.Module, nil
}
