package validation

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	fail lipgloss.Style
	ok   lipgloss.Style
	path lipgloss.Style
}

// newPalette binds the styles to w, so colors are dropped when w is not a terminal.
func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		fail: r.NewStyle().Foreground(lipgloss.Color("9")),
		ok:   r.NewStyle().Foreground(lipgloss.Color("10")),
		path: r.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// PrintHierarchy writes the result tree with one tab of indentation per level.
// With hideValid set, subtrees that are effectively valid are skipped.
func PrintHierarchy(w io.Writer, r *Result, hideValid bool) error {
	return printHierarchy(w, newPalette(w), r, 0, hideValid)
}

func printHierarchy(w io.Writer, p palette, r *Result, depth int, hideValid bool) error {
	valid := r.EffectiveValid()
	if valid && hideValid {
		return nil
	}

	prefix := strings.Repeat("\t", depth)
	headline := p.fail.Render(r.Message)
	if valid {
		headline = p.ok.Render("Result: OK")
	}
	_, err := fmt.Fprintf(w, "%s%s\n%sObject: %s\n%sParam: %s\n%sValue: %s\n\n",
		prefix, headline,
		prefix, formatValue(r.Container),
		prefix, formatValue(r.Locator),
		prefix, formatValue(r.Value))
	if err != nil {
		return err
	}

	for _, child := range r.Children {
		if err := printHierarchy(w, p, child, depth+1, hideValid); err != nil {
			return err
		}
	}
	return nil
}

// PrintEndpoints writes only the failing leaves of the tree, each with the
// locator path leading to it.
func PrintEndpoints(w io.Writer, r *Result) error {
	return printEndpoints(w, newPalette(w), r, nil)
}

func printEndpoints(w io.Writer, p palette, r *Result, path []any) error {
	if r.Locator != nil {
		path = append(path[:len(path):len(path)], r.Locator)
	}
	if r.IsEndpoint() {
		if r.Valid {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s\n\t\t%s\n\n", p.path.Render(FormatPath(path)), p.fail.Render(r.Message))
		return err
	}
	for _, child := range r.Children {
		if err := printEndpoints(w, p, child, path); err != nil {
			return err
		}
	}
	return nil
}

// FormatPath renders locators as "fieldA -> fieldB[2] -> fieldC". Integer
// locators are rendered as indexes and nil locators are skipped.
func FormatPath(locators []any) string {
	var b strings.Builder
	for _, loc := range locators {
		switch l := loc.(type) {
		case nil:
			continue
		case int:
			fmt.Fprintf(&b, "[%d]", l)
		default:
			if b.Len() > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(formatValue(l))
		}
	}
	return b.String()
}
