// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	release = "0.0.0"
	commit  = ""
	date    = "Thu, 01 Jan 1970 00:00:00 +0000"
)

func main() {
	commandInit()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	logrus.SetLevel(logrus.TraceLevel)
}
