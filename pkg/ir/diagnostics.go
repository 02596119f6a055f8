package ir

import (
	"fmt"
	"log/slog"
)

// Severity classifies a diagnostic. Only Error severity fails a build.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "NOTE"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// Diagnostic is one reported finding: severity, message, and the source
// location it refers to (a step name or a config path; may be empty).
type Diagnostic struct {
	Severity Severity
	Message  string
	Location string
}

func (d Diagnostic) String() string {
	if d.Location == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Location, d.Message)
}

// Diagnostics is an append-only sink. Reports are mirrored to slog as they
// arrive so the invoking build sees them in order.
type Diagnostics struct {
	items []Diagnostic
}

// Report appends a diagnostic and logs it.
func (d *Diagnostics) Report(sev Severity, location, format string, args ...any) {
	diag := Diagnostic{Severity: sev, Message: fmt.Sprintf(format, args...), Location: location}
	d.items = append(d.items, diag)

	switch sev {
	case Error:
		slog.Error(diag.Message, "location", location)
	case Warning:
		slog.Warn(diag.Message, "location", location)
	default:
		slog.Info(diag.Message, "location", location)
	}
}

// Errorf reports an ERROR diagnostic.
func (d *Diagnostics) Errorf(location, format string, args ...any) {
	d.Report(Error, location, format, args...)
}

// Warnf reports a WARNING diagnostic.
func (d *Diagnostics) Warnf(location, format string, args ...any) {
	d.Report(Warning, location, format, args...)
}

// Notef reports a NOTE diagnostic.
func (d *Diagnostics) Notef(location, format string, args ...any) {
	d.Report(Note, location, format, args...)
}

// Items returns the reported diagnostics in order.
func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}

// HasErrors reports whether any ERROR diagnostic was reported.
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics at the given severity.
func (d *Diagnostics) Count(sev Severity) int {
	n := 0
	for _, item := range d.items {
		if item.Severity == sev {
			n++
		}
	}
	return n
}
