// Package wasm is the structured stack-machine IR the rule compiler emits.
//
// The shape follows WebAssembly: typed values (i32, i64, f64), nested blocks
// that branches exit, host imports called by index, and one entry function.
// A ModuleBuilder accumulates code; Build validates it and freezes a Module
// that can be encoded, disassembled, or compiled for execution by package vm.
package wasm
