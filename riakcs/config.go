// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package riakcs

import (
	"fmt"
	"net"
	"strconv"

	"riakcsmon/common/helpers"
)

// Configuration describes one Riak CS instance to monitor.
type Configuration struct {
	// AccessID is the access key used to sign requests.
	AccessID string `validate:"required_with=AccessSecret"`
	// AccessSecret is the secret key used to sign requests.
	AccessSecret string `validate:"required_with=AccessID"`
	// Host is the Riak CS proxy to connect through.
	Host string `validate:"required"`
	// Port is the port of the proxy.
	Port uint16 `validate:"min=1"`
	// IsSecure tells if HTTPS should be used. When unset, HTTP is used.
	IsSecure *bool
	// S3Root replaces the default service hostname.
	S3Root string `validate:"omitempty,hostname_port|hostname_rfc1123"`
	// Region is only used to sign requests.
	Region string `validate:"required"`
	// PathStyle addresses the stats bucket in the path instead of the
	// hostname.
	PathStyle bool
	// Tags are attached to every metric emitted for this instance.
	Tags map[string]string
}

// DefaultConfiguration represents the default configuration for an instance.
func DefaultConfiguration() Configuration {
	return Configuration{
		Host:   "localhost",
		Port:   8080,
		Region: "us-east-1",
	}
}

// Target returns the identifier of the instance. It is used in error
// messages and to label emitted metrics.
func (c Configuration) Target() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Endpoint returns the URL of the S3 service requests are addressed to.
func (c Configuration) Endpoint() string {
	scheme := "http"
	if c.IsSecure != nil && *c.IsSecure {
		scheme = "https"
	}
	root := c.S3Root
	if root == "" {
		root = defaultS3Root
	}
	return fmt.Sprintf("%s://%s", scheme, root)
}

// Proxy returns the URL of the proxy requests go through.
func (c Configuration) Proxy() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port))))
}

func init() {
	helpers.RegisterMapstructureUnmarshallerHook(helpers.DefaultValuesUnmarshallerHook(DefaultConfiguration()))
}
