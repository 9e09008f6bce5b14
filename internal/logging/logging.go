// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the process-wide logger and hands out
// component-scoped entries.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var root = logrus.New()

// Init configures the process-wide logger. level is one of debug, info,
// warn, error; format is text or json. Unrecognized values fall back to
// info and text.
func Init(level, format string, out io.Writer) {
	root.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	root.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		root.SetFormatter(&logrus.JSONFormatter{})
	} else {
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// New returns a logger scoped to one component. The component shows up as
// a field on every line it emits.
func New(component string) *logrus.Entry {
	return root.WithField("component", component)
}
