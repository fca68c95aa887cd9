// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/armon/circbuf"

	"github.com/rfomin/elfbsp/pkg/elog"
)

const diagBufferCapacity = 16 * 1024

// diagLogger wraps an elog.View and mirrors every Errorf/Warnf call into a
// bounded ring buffer, so a fatal exit can print the last few diagnostics
// that led up to it even though logrus itself only writes to stderr as it
// goes.
type diagLogger struct {
	elog.View
	buf *circbuf.Buffer
}

func newDiagLogger(v elog.View) *diagLogger {
	buf, _ := circbuf.NewBuffer(diagBufferCapacity)
	return &diagLogger{View: v, buf: buf}
}

func (d *diagLogger) Errorf(format string, x ...interface{}) {
	fmt.Fprintf(d.buf, "ERROR "+format+"\n", x...)
	d.View.Errorf(format, x...)
}

func (d *diagLogger) Warnf(format string, x ...interface{}) {
	fmt.Fprintf(d.buf, "WARN  "+format+"\n", x...)
	d.View.Warnf(format, x...)
}

// Dump returns everything the buffer has retained, oldest first.
func (d *diagLogger) Dump() string {
	return string(d.buf.Bytes())
}
