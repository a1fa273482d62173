package demo

import (
	"fmt"
	"io"
)

// DefaultName is used when a Person is created without a name.
const DefaultName = "DefaultName"

// Person is a named greeter.
type Person struct {
	name string
}

// NewPerson returns a Person called name, or DefaultName when name is empty.
func NewPerson(name string) *Person {
	p := &Person{}
	p.SetName(name)
	return p
}

// Name returns the person's name.
func (p *Person) Name() string {
	return p.name
}

// SetName renames the person. An empty name resets it to DefaultName.
func (p *Person) SetName(name string) {
	if name == "" {
		name = DefaultName
	}
	p.name = name
}

// Greet writes "Hello, <name>".
func (p *Person) Greet(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Hello, %s\n", p.name)
	return err
}
