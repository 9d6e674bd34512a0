// Package report is the compiler's diagnostic sink, generalized from the
// teacher's report/logging packages (bootstrap/report, src/logging) down
// to what spec.md §7 needs: a line-numbered error/warning stream with a
// log level, no source spans.
package report

import "os"

// Level controls how much the reporter prints. Higher levels are more
// verbose, mirroring bootstrap/report's LogLevel enumeration.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarn
	LevelVerbose
)

// Reporter accumulates and displays diagnostics for one compilation run.
// It is not safe for concurrent use; spec.md §5 runs the pipeline on a
// single goroutine.
type Reporter struct {
	level      Level
	errorCount int
}

// New creates a reporter at the given verbosity.
func New(level Level) *Reporter {
	return &Reporter{level: level}
}

// Errorf reports a compilation error at the given source line.
func (r *Reporter) Errorf(line int, format string, args ...interface{}) {
	r.errorCount++
	if r.level >= LevelError {
		displayError(line, format, args...)
	}
}

// Warnf reports a non-fatal warning at the given source line.
func (r *Reporter) Warnf(line int, format string, args ...interface{}) {
	if r.level >= LevelWarn {
		displayWarn(line, format, args...)
	}
}

// Infof prints an informational message, shown only at LevelVerbose.
func (r *Reporter) Infof(format string, args ...interface{}) {
	if r.level >= LevelVerbose {
		displayInfo(format, args...)
	}
}

// HadError reports whether any error has been recorded so far. The
// driver uses this to choose a non-zero exit code without scattering
// os.Exit calls through the pipeline.
func (r *Reporter) HadError() bool {
	return r.errorCount > 0
}

// Fatal reports a failure outside the compilation pipeline itself --
// a malformed config file, a source file that can't be opened -- and
// exits, mirroring bootstrap/report.ReportFatal. Unlike Errorf it
// carries no line number and is never rate-limited by level, since
// there's no later diagnostic to pair it with.
func Fatal(format string, args ...interface{}) {
	displayFatal(format, args...)
	os.Exit(1)
}
