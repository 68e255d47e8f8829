// SPDX-FileCopyrightText: 2023 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package yaml wraps gopkg.in/yaml.v3 and adds the "!include" tag to split
// a configuration file into several ones.
package yaml

import (
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unmarshal decodes the first document found within the in byte slice and
// assigns decoded values into the out value.
func Unmarshal(in []byte, out any) (err error) {
	return yaml.Unmarshal(in, out)
}

// UnmarshalWithInclude decodes the file named input from fsys into out. The
// "!include" tag is replaced by the content of the file it names, relative
// to fsys. Top-level keys starting with a dot are dropped so they can be
// used as anchors.
func UnmarshalWithInclude(fsys fs.FS, input string, out any) (err error) {
	var outNode yaml.Node
	in, err := fs.ReadFile(fsys, input)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", input, err)
	}
	if err := Unmarshal(in, &outNode); err != nil {
		return fmt.Errorf("in %s: %w", input, err)
	}

	if outNode.Kind == yaml.DocumentNode && len(outNode.Content) > 0 {
		outNode = *outNode.Content[0]
	}
	if outNode.Kind == yaml.MappingNode {
		for i := 0; i < len(outNode.Content)-1; {
			key := outNode.Content[i]
			if key.Kind == yaml.ScalarNode && key.Tag == "!!str" && strings.HasPrefix(key.Value, ".") {
				outNode.Content = append(outNode.Content[:i], outNode.Content[i+2:]...)
			} else {
				i += 2
			}
		}
	}

	todo := []*yaml.Node{&outNode}
	for len(todo) > 0 {
		current := todo[0]
		todo = todo[1:]
		if current.Tag != "!include" {
			todo = append(todo, current.Content...)
			continue
		}
		if current.Alias != nil {
			return fmt.Errorf("at line %d of %s, no alias is allowed for !include", current.Line, input)
		}
		if len(current.Content) > 0 {
			return fmt.Errorf("at line %d of %s, no content is allowed for !include", current.Line, input)
		}
		var included yaml.Node
		if err := UnmarshalWithInclude(fsys, current.Value, &included); err != nil {
			return fmt.Errorf("at line %d of %s: %w", current.Line, input, err)
		}
		*current = included
	}

	return outNode.Decode(out)
}
