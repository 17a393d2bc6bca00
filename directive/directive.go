// Package directive lets mission files drive the tactics manager: each
// directive is an expr condition paired with an order to give (or clear)
// when the condition becomes true.
package directive

import (
	"errors"
	"fmt"
	"os"

	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-tactics/tactics"
)

// Directive is a condition → group order pair.
type Directive struct {
	Name     string             `yaml:"name"`
	Priority int                `yaml:"priority"` // higher = evaluated first
	When     string             `yaml:"when"`     // expr source over Env
	Group    string             `yaml:"group"`
	Order    *tactics.OrderSpec `yaml:"order,omitempty"`
	Clear    bool               `yaml:"clear,omitempty"` // stop managing the group instead
	// Exclusive blocks lower-priority directives for the same group once
	// this one fires in an evaluation.
	Exclusive bool `yaml:"exclusive,omitempty"`
	// Repeat lets the directive fire again each time its condition turns
	// true after having been false. Otherwise it fires at most once.
	Repeat bool `yaml:"repeat,omitempty"`

	program *vm.Program
}

func (d *Directive) validate() error {
	switch {
	case d.Name == "":
		return errors.New("directive without a name")
	case d.Group == "":
		return fmt.Errorf("directive %q: missing group", d.Name)
	case d.Clear && d.Order != nil:
		return fmt.Errorf("directive %q: both clear and order given", d.Name)
	case !d.Clear && d.Order == nil:
		return fmt.Errorf("directive %q: needs an order or clear", d.Name)
	}
	if d.Order != nil {
		if _, _, err := d.Order.Build(); err != nil {
			return fmt.Errorf("directive %q: %w", d.Name, err)
		}
	}
	return nil
}

type file struct {
	Directives []*Directive `yaml:"directives"`
}

// Load reads directives from a YAML file.
func Load(path string) ([]*Directive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directives: %w", err)
	}
	return Parse(data)
}

// Parse decodes a directives document.
func Parse(data []byte) ([]*Directive, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse directives: %w", err)
	}
	return f.Directives, nil
}
