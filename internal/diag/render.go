package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
)

// Colorize reports whether w is a terminal worth coloring.
func Colorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes diagnostics one per line:
//
//	ERROR[R2001] message
//	  note: extra context
//
// Severity tags are padded to a common display width so messages align.
func Render(w io.Writer, diags []Diagnostic, colored bool) {
	tagWidth := 0
	for i := range diags {
		if n := runewidth.StringWidth(tag(diags[i])); n > tagWidth {
			tagWidth = n
		}
	}
	for i := range diags {
		d := diags[i]
		t := tag(d)
		pad := strings.Repeat(" ", tagWidth-runewidth.StringWidth(t))
		if colored {
			t = paint(d.Severity, t)
		}
		fmt.Fprintf(w, "%s%s %s", t, pad, d.Message)
		if !d.Primary.Empty() || d.Primary.File != 0 {
			fmt.Fprintf(w, " (%s)", d.Primary)
		}
		fmt.Fprintln(w)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s\n", n.Msg)
		}
	}
}

func tag(d Diagnostic) string {
	return d.Severity.String() + "[" + d.Code.String() + "]"
}

func paint(sev Severity, s string) string {
	switch sev {
	case SevError:
		return errColor.Sprint(s)
	case SevWarning:
		return warnColor.Sprint(s)
	default:
		return infoColor.Sprint(s)
	}
}
