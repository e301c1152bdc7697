package software

import (
	"fmt"
	"sort"
	"sync"
)

// A kernel is invoked once for every dispatched work item.
type Kernel func(inv *Invocation)

// A ray tracing program implemented in Go. Programs group kernels by
// execution pass and entry point and hold the parameters bound to them.
type Program struct {
	name        string
	description string

	// pass name -> entry point -> kernel
	passes map[string]map[string]Kernel

	activePass string
	params     map[string]interface{}
}

// Create an empty program.
func NewProgram(name, description string) *Program {
	return &Program{
		name:        name,
		description: description,
		passes:      make(map[string]map[string]Kernel),
		params:      make(map[string]interface{}),
	}
}

// Get program name.
func (p *Program) Name() string {
	return p.name
}

// Get program description.
func (p *Program) Description() string {
	return p.description
}

// Register a kernel for the given pass and entry point.
func (p *Program) AddKernel(pass, entryPoint string, kernel Kernel) *Program {
	entryPoints, exists := p.passes[pass]
	if !exists {
		entryPoints = make(map[string]Kernel)
		p.passes[pass] = entryPoints
	}
	entryPoints[entryPoint] = kernel
	return p
}

// List the program's execution passes in sorted order.
func (p *Program) Passes() []string {
	passes := make([]string, 0, len(p.passes))
	for pass := range p.passes {
		passes = append(passes, pass)
	}
	sort.Strings(passes)
	return passes
}

// Get the value bound to a parameter.
func (p *Program) Param(name string) (interface{}, bool) {
	val, exists := p.params[name]
	return val, exists
}

func (p *Program) kernel(entryPoint string) (Kernel, error) {
	if p.activePass == "" {
		return nil, fmt.Errorf("%w: no pass selected for program %q", ErrUnknownPass, p.name)
	}
	kernel, exists := p.passes[p.activePass][entryPoint]
	if !exists {
		return nil, fmt.Errorf("%w: %q in pass %q of program %q", ErrUnknownEntryPoint, entryPoint, p.activePass, p.name)
	}
	return kernel, nil
}

// Information about a registered program.
type ProgramInfo struct {
	Name        string
	Description string
	Passes      []string
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]func() *Program)
)

// Register a program factory. Registering an existing name replaces the
// previous factory.
func Register(name string, factory func() *Program) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Create a new instance of a registered program.
func LookupProgram(name string) (*Program, error) {
	registryMu.Lock()
	factory, exists := registry[name]
	registryMu.Unlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}
	return factory(), nil
}

// List registered programs sorted by name.
func Programs() []ProgramInfo {
	registryMu.Lock()
	defer registryMu.Unlock()

	list := make([]ProgramInfo, 0, len(registry))
	for _, factory := range registry {
		prog := factory()
		list = append(list, ProgramInfo{
			Name:        prog.Name(),
			Description: prog.Description(),
			Passes:      prog.Passes(),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
