package wasm

import "fmt"

// Validate checks the module for structural validity before encoding.
// Instruction streams are not type checked.
func (m *Module) Validate() error {
	if err := m.validateTypeIndices(); err != nil {
		return err
	}
	if err := m.validateCodeCount(); err != nil {
		return err
	}
	if err := m.validateExports(); err != nil {
		return err
	}
	if err := m.validateElements(); err != nil {
		return err
	}
	if err := m.validateGlobals(); err != nil {
		return err
	}
	if err := m.validateLimits(); err != nil {
		return err
	}
	return nil
}

// NumFuncs returns the size of the function index space.
func (m *Module) NumFuncs() int {
	return len(m.Imports) + len(m.Funcs)
}

func (m *Module) validateTypeIndices() error {
	numTypes := uint32(len(m.Types))

	for i, imp := range m.Imports {
		if imp.TypeIdx >= numTypes {
			return fmt.Errorf("import %d (%s.%s) references invalid type index %d", i, imp.Module, imp.Name, imp.TypeIdx)
		}
	}
	for i, typeIdx := range m.Funcs {
		if typeIdx >= numTypes {
			return fmt.Errorf("function %d references invalid type index %d", i, typeIdx)
		}
	}
	return nil
}

func (m *Module) validateCodeCount() error {
	if len(m.Code) != len(m.Funcs) {
		return fmt.Errorf("function count %d does not match code count %d", len(m.Funcs), len(m.Code))
	}
	for i, body := range m.Code {
		if n := len(body.Code); n == 0 || body.Code[n-1] != OpEnd {
			return fmt.Errorf("code %d is not terminated by end", i)
		}
	}
	return nil
}

func (m *Module) validateExports() error {
	seen := make(map[string]bool, len(m.Exports))
	for _, exp := range m.Exports {
		if seen[exp.Name] {
			return fmt.Errorf("duplicate export name %q", exp.Name)
		}
		seen[exp.Name] = true

		var limit int
		switch exp.Kind {
		case KindFunc:
			limit = m.NumFuncs()
		case KindTable:
			limit = len(m.Tables)
		case KindMemory:
			limit = len(m.Memories)
		case KindGlobal:
			limit = len(m.Globals)
		default:
			return fmt.Errorf("export %q has invalid kind %d", exp.Name, exp.Kind)
		}
		if int(exp.Idx) >= limit {
			return fmt.Errorf("export %q references invalid index %d", exp.Name, exp.Idx)
		}
	}
	return nil
}

func (m *Module) validateElements() error {
	if len(m.Elements) > 0 && len(m.Tables) == 0 {
		return fmt.Errorf("element segment without a table")
	}
	n := uint32(m.NumFuncs())
	for i, elem := range m.Elements {
		for _, idx := range elem.FuncIdxs {
			if idx >= n {
				return fmt.Errorf("element %d references invalid function index %d", i, idx)
			}
		}
	}
	if len(m.Data) > 0 && len(m.Memories) == 0 {
		return fmt.Errorf("data segment without a memory")
	}
	return nil
}

func (m *Module) validateGlobals() error {
	for i, g := range m.Globals {
		if n := len(g.Init); n == 0 || g.Init[n-1] != OpEnd {
			return fmt.Errorf("global %d initializer is not terminated by end", i)
		}
	}
	return nil
}

func (m *Module) validateLimits() error {
	if len(m.Memories) > 1 {
		return fmt.Errorf("multiple memories not supported (found %d)", len(m.Memories))
	}
	for i, mem := range m.Memories {
		if mem.Limits.Min > MaxPages {
			return fmt.Errorf("memory %d min %d exceeds %d pages", i, mem.Limits.Min, MaxPages)
		}
		if mem.Limits.Max != nil && *mem.Limits.Max < mem.Limits.Min {
			return fmt.Errorf("memory %d max %d is less than min %d", i, *mem.Limits.Max, mem.Limits.Min)
		}
	}
	for i, tbl := range m.Tables {
		if tbl.Limits.Max != nil && *tbl.Limits.Max < tbl.Limits.Min {
			return fmt.Errorf("table %d max %d is less than min %d", i, *tbl.Limits.Max, tbl.Limits.Min)
		}
	}
	return nil
}
