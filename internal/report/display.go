package report

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

var (
	errorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	errorColorFG = pterm.FgRed
	warnStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	warnColorFG  = pterm.FgYellow
	infoColorFG  = pterm.FgLightCyan
	fatalStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
)

// syncOutput points pterm at the current os.Stdout. pterm/gookit-color
// snapshot os.Stdout into a package-level var at import time, so callers
// that swap os.Stdout after that (as the tests in this package do) would
// otherwise never see it take effect.
func syncOutput() {
	pterm.SetDefaultOutput(os.Stdout)
}

func displayError(line int, format string, args ...interface{}) {
	syncOutput()
	errorStyleBG.Print(" error ")
	errorColorFG.Println(fmt.Sprintf(" line %d: %s", line, fmt.Sprintf(format, args...)))
}

func displayWarn(line int, format string, args ...interface{}) {
	syncOutput()
	warnStyleBG.Print(" warn ")
	warnColorFG.Println(fmt.Sprintf(" line %d: %s", line, fmt.Sprintf(format, args...)))
}

func displayInfo(format string, args ...interface{}) {
	syncOutput()
	infoColorFG.Println(fmt.Sprintf(format, args...))
}

func displayFatal(format string, args ...interface{}) {
	syncOutput()
	fatalStyleBG.Print(" fatal ")
	errorColorFG.Println(fmt.Sprintf(" %s", fmt.Sprintf(format, args...)))
}
