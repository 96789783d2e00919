package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"audiodupes/internal/cluster"
	"audiodupes/internal/config"
)

// Display controls how text is rendered for one destination.
type Display struct {
	Colour bool
}

// ResolveColour maps an output.colour mode to a decision for w. "auto"
// colours only terminals.
func ResolveColour(mode string, w io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case config.ColourYes:
		return true
	case config.ColourNo:
		return false
	default:
		return isTerminal(w)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (d Display) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if d.Colour {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// Heading renders cluster headers.
func (d Display) Heading(s string) string {
	return d.paint(s, color.FgCyan, color.Bold)
}

// Path renders a file path.
func (d Display) Path(s string) string {
	return d.paint(s, color.FgBlue)
}

// Muted renders secondary information.
func (d Display) Muted(s string) string {
	return d.paint(s, color.FgHiBlack)
}

// Score renders a score coloured by its class.
func (d Display) Score(score float64, class cluster.Class) string {
	text := FormatScore(score)
	switch class {
	case cluster.ClassStrong:
		return d.paint(text, color.FgGreen, color.Bold)
	case cluster.ClassMatch:
		return d.paint(text, color.FgYellow)
	case cluster.ClassWeak:
		return d.paint(text, color.FgHiBlack)
	default:
		return text
	}
}

// FormatScore rounds to four places and keeps at least one decimal, so a
// perfect match prints as "1.0".
func FormatScore(score float64) string {
	text := strconv.FormatFloat(score, 'f', 4, 64)
	text = strings.TrimRight(text, "0")
	if strings.HasSuffix(text, ".") {
		text += "0"
	}
	return text
}

// ShowPair reports whether a pair is printed. Pairs at or below the weak
// threshold only appear in verbose output.
func ShowPair(ev cluster.PairEvent, verbose bool) bool {
	return verbose || ev.Class != cluster.ClassNone
}

// PairBlock renders one scored pair: the score on its own line, both paths
// indented, then a blank line. Verbose output leads with the coarse
// distance against the coarse bit budget.
func (d Display) PairBlock(ev cluster.PairEvent, verbose bool) string {
	var b strings.Builder
	if verbose {
		fmt.Fprintf(&b, "possible match: %d / %d\n", ev.CoarseDistance, ev.CoarseBits)
	}
	fmt.Fprintf(&b, "%s\n   %s\n   %s\n\n", d.Score(ev.Score, ev.Class), d.Path(ev.PathA), d.Path(ev.PathB))
	return b.String()
}

// Good renders a positive status word.
func (d Display) Good(s string) string {
	return d.paint(s, color.FgGreen)
}

// Bad renders a negative status word.
func (d Display) Bad(s string) string {
	return d.paint(s, color.FgRed)
}

// FailureLine renders a file that could not be fingerprinted.
func (d Display) FailureLine(err error) string {
	return d.Bad(err.Error())
}
