// Package greet says hello.
package greet

import "example.com/greet/internal/textx"

// Greeter builds greetings.
type Greeter struct {
	Name string `json:"name"`
}

// NewGreeter returns a greeter for name.
func NewGreeter(name string) *Greeter { return &Greeter{Name: name} }

// Hello greets the configured name.
func (g *Greeter) Hello() string { return textx.Join("hello", g.Name) }
