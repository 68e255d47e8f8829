// SPDX-FileCopyrightText: 2023 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package yaml

import "gopkg.in/yaml.v3"

// Marshal serializes the value provided into a YAML document.
func Marshal(in any) (out []byte, err error) {
	return yaml.Marshal(in)
}
