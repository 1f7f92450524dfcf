package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"semgraph/internal/diag"
	"semgraph/internal/source"
)

type palette struct {
	sev    map[diag.Severity]*color.Color
	code   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgGreen),
	}
	all := []*color.Color{p.code, p.gutter, p.caret, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty renders each diagnostic as
//
//	path:line:col: error SEM3008: message
//	  12 | source line
//	     |     ^~~~
//
// followed by its notes. The bag is expected to be sorted.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		var sb strings.Builder
		sev := p.sev[d.Severity]
		if sev == nil {
			sev = p.code
		}
		fmt.Fprintf(&sb, "%s: %s %s: %s\n",
			position(fs, d.Primary, opts.PathMode, opts.BaseDir),
			sev.Sprint(d.Severity.Label()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		excerpt(&sb, fs, d.Primary, opts.Context, p)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(&sb, "  %s %s: %s\n", p.note.Sprint("note:"),
					position(fs, n.Span, opts.PathMode, opts.BaseDir), n.Msg)
			}
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// Short renders one line per diagnostic, for editors and grep.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, base string) error {
	for _, d := range bag.Items() {
		_, err := fmt.Fprintf(w, "%s: %s %s: %s\n", position(fs, d.Primary, mode, base),
			d.Severity.Label(), d.Code.ID(), d.Message)
		if err != nil {
			return err
		}
	}
	return nil
}

func position(fs *source.FileSet, span source.Span, mode PathMode, base string) string {
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", displayPath(f, mode, base), start.Line, start.Col)
}

// excerpt prints the primary line, up to context lines before it, and a
// caret run under the span. Widths go through runewidth so wide runes keep
// the carets aligned; tabs are copied into the caret prefix.
func excerpt(sb *strings.Builder, fs *source.FileSet, span source.Span, context int, p palette) {
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	gutter := len(fmt.Sprint(start.Line)) + 1
	first := start.Line
	if context > 0 && int(first) > context {
		first -= source.Off(context)
	} else if context > 0 {
		first = 1
	}
	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(sb, "%s %s\n", p.gutter.Sprintf("%*d |", gutter, ln), f.GetLine(ln))
	}

	line := f.GetLine(start.Line)
	col := min(int(start.Col)-1, len(line))
	stop := len(line)
	if end.Line == start.Line {
		stop = min(max(int(end.Col)-1, col), len(line))
	}
	var prefix strings.Builder
	for _, r := range line[:col] {
		if r == '\t' {
			prefix.WriteRune('\t')
			continue
		}
		prefix.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := max(runewidth.StringWidth(line[col:stop]), 1)
	marks := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(sb, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutter, ""), prefix.String(), p.caret.Sprint(marks))
}
