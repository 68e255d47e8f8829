// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package agent

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Status of the last check cycle of an instance.
const (
	StatusNever = "never"
	StatusOK    = "ok"
	StatusError = "error"
)

// InstanceStatus is the status of the last check cycle of an instance.
type InstanceStatus struct {
	Target            string    `json:"target"`
	LastCycle         time.Time `json:"last-cycle"`
	LastStatus        string    `json:"last-status"`
	LastError         string    `json:"last-error,omitempty"`
	Submitted         int       `json:"submitted"`
	SkippedFields     int       `json:"skipped-fields"`
	FailedSubmissions int       `json:"failed-submissions"`
}

func (c *Component) instancesHandlerFunc(gc *gin.Context) {
	gc.JSON(http.StatusOK, gin.H{"instances": c.Statuses()})
}
