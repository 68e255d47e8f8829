// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package helpers

import (
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Validate is a validator instance to be used everywhere.
var Validate *validator.Validate

// isListen validates a <dns>:<port> combination, as used for listening
// addresses or for Kafka brokers.
func isListen(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	if portNum, err := strconv.ParseUint(port, 10, 16); err != nil || portNum > 65535 {
		return false
	}
	if host != "" {
		return Validate.Var(host, "hostname_rfc1123") == nil
	}
	return true
}

func init() {
	Validate = validator.New()
	Validate.RegisterValidation("listen", isListen)
}
