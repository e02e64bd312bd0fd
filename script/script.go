// Package script lets a Lua file play the part of the I/O devices on a
// machine's port bus.
//
// A script defines the globals
//
//	function port_in(port) return value end   -- nil leaves the port unhandled
//	function port_out(port, value) end         -- return false to decline
//
// and can reach the machine through the z80 table: z80.peek(addr),
// z80.poke(addr, value) and z80.cycles().
package script

import (
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// Memory is the part of a machine a script may touch.
type Memory interface {
	Peek(addr uint16) byte
	Poke(addr uint16, value byte)
	Cycles() uint64
}

// Script is not safe for concurrent use; give every machine its own.
type Script struct {
	L   *lua.LState
	mem Memory
	err error
}

func Load(path string) (*Script, error) {
	s := newScript()
	if err := s.L.DoFile(path); err != nil {
		s.Close()
		return nil, errors.Wrapf(err, "script: load %s", path)
	}
	return s, nil
}

func LoadString(src string) (*Script, error) {
	s := newScript()
	if err := s.L.DoString(src); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "script: load")
	}
	return s, nil
}

func newScript() *Script {
	s := &Script{L: lua.NewState()}
	tbl := s.L.NewTable()
	s.L.SetFuncs(tbl, map[string]lua.LGFunction{
		"peek":   s.luaPeek,
		"poke":   s.luaPoke,
		"cycles": s.luaCycles,
	})
	s.L.SetGlobal("z80", tbl)
	return s
}

// Attach binds the z80 table to mem.
func (s *Script) Attach(mem Memory) {
	s.mem = mem
}

func (s *Script) Close() {
	s.L.Close()
}

// Err returns the first error raised by a port callback.
func (s *Script) Err() error {
	return s.err
}

func (s *Script) In(port uint16) (byte, bool) {
	fn, ok := s.L.GetGlobal("port_in").(*lua.LFunction)
	if !ok {
		return 0, false
	}
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(port)); err != nil {
		s.fail(errors.Wrapf(err, "script: port_in(0x%04X)", port))
		return 0, false
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, false
	}
	return byte(int(n)), true
}

func (s *Script) Out(port uint16, value byte) bool {
	fn, ok := s.L.GetGlobal("port_out").(*lua.LFunction)
	if !ok {
		return false
	}
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(port), lua.LNumber(value)); err != nil {
		s.fail(errors.Wrapf(err, "script: port_out(0x%04X)", port))
		return false
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret != lua.LFalse
}

func (s *Script) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *Script) memory(L *lua.LState) Memory {
	if s.mem == nil {
		L.RaiseError("z80: no machine attached")
	}
	return s.mem
}

func (s *Script) luaPeek(L *lua.LState) int {
	addr := L.CheckInt(1)
	L.Push(lua.LNumber(s.memory(L).Peek(uint16(addr))))
	return 1
}

func (s *Script) luaPoke(L *lua.LState) int {
	addr := L.CheckInt(1)
	value := L.CheckInt(2)
	s.memory(L).Poke(uint16(addr), byte(value))
	return 0
}

func (s *Script) luaCycles(L *lua.LState) int {
	L.Push(lua.LNumber(s.memory(L).Cycles()))
	return 1
}
