// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package helpers_test

import (
	"testing"

	"riakcsmon/common/helpers"
)

func TestListenValidator(t *testing.T) {
	s := struct {
		Listen string `validate:"listen"`
	}{}
	cases := []struct {
		Pos    helpers.Pos
		Listen string
		Err    bool
	}{
		{helpers.Mark(), "127.0.0.1:161", false},
		{helpers.Mark(), "localhost:8080", false},
		{helpers.Mark(), "0.0.0.0:0", false},
		{helpers.Mark(), ":8080", false},
		{helpers.Mark(), "localhost", true},
		{helpers.Mark(), "127.0.0.1", true},
		{helpers.Mark(), "127.0.0.1:what", true},
		{helpers.Mark(), "127.0.0.1:100000", true},
		{helpers.Mark(), "not_a host:80", true},
	}
	for _, tc := range cases {
		s.Listen = tc.Listen
		err := helpers.Validate.Struct(s)
		if err == nil && tc.Err {
			t.Errorf("%sValidate.Struct(%q) expected an error", tc.Pos, tc.Listen)
		} else if err != nil && !tc.Err {
			t.Errorf("%sValidate.Struct(%q) error:\n%+v", tc.Pos, tc.Listen, err)
		}
	}
}
