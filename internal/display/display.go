// Package display renders discovery activity and results on the terminal.
// It consumes engine events through the progress-sink interface and the
// final report; the engine itself has no dependency on it.
package display

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/linkdapi/leads-cli/internal/model"
)

// Console implements the discovery progress sink and renders summaries and
// tables. Quiet mode drops activity lines but keeps the discovered counter.
type Console struct {
	out   io.Writer
	quiet bool

	mu         sync.Mutex
	discovered int
}

// NewConsole creates a Console writing to stdout.
func NewConsole(quiet bool) *Console {
	return &Console{out: os.Stdout, quiet: quiet}
}

// NewConsoleWriter creates a Console writing to w.
func NewConsoleWriter(w io.Writer, quiet bool) *Console {
	return &Console{out: w, quiet: quiet}
}

// Log prints one activity line, colored by its status glyph.
func (c *Console) Log(line string) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case strings.HasPrefix(line, "✗"):
		fmt.Fprintln(c.out, color.Red.Sprint(line))
	case strings.HasPrefix(line, "⚠"), strings.HasPrefix(line, "⊘"), strings.HasPrefix(line, "⏳"):
		fmt.Fprintln(c.out, color.Yellow.Sprint(line))
	case strings.HasPrefix(line, "✓"):
		fmt.Fprintln(c.out, color.Green.Sprint(line))
	default:
		fmt.Fprintln(c.out, color.Cyan.Sprint(line))
	}
}

// LevelStart prints a level banner.
func (c *Console) LevelStart(level, maxDepth int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, color.Cyan.Sprintf("── level %d of %d ──", level+1, maxDepth))
}

// ProfileAdded updates the live discovered counter.
func (c *Console) ProfileAdded(total int) {
	c.mu.Lock()
	c.discovered = total
	c.mu.Unlock()
}

// Discovered returns the last reported discovered count.
func (c *Console) Discovered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discovered
}

// Summary prints the discovery summary block for a report.
func (c *Console) Summary(report *model.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, color.Cyan.Sprint("═══ Discovery Summary ═══"))
	c.summaryRow("Total Profiles Discovered", strconv.Itoa(report.TotalDiscovered))
	c.summaryRow("Unique URNs Found", strconv.Itoa(report.UniqueURNs))
	c.summaryRow("Failed Usernames", strconv.Itoa(len(report.FailedUsernames)))
	c.summaryRow("Failed URNs", strconv.Itoa(len(report.FailedURNs)))

	if len(report.FailedUsernames) > 0 {
		shown := report.FailedUsernames
		if len(shown) > 5 {
			shown = shown[:5]
		}
		fmt.Fprintln(c.out, color.Yellow.Sprintf("Failed usernames: %s", strings.Join(shown, ", ")))
		if rest := len(report.FailedUsernames) - len(shown); rest > 0 {
			fmt.Fprintln(c.out, color.Gray.Sprintf("... and %d more", rest))
		}
	}
}

func (c *Console) summaryRow(label, value string) {
	fmt.Fprintf(c.out, "  %s  %s\n",
		color.Cyan.Sprint(runewidth.FillRight(label, 28)),
		color.Green.Sprint(value),
	)
}

type column struct {
	title string
	width int
}

var tableColumns = []column{
	{"Depth", 6},
	{"Name", 22},
	{"Headline", 35},
	{"Location", 20},
	{"Company", 20},
}

// Table prints up to maxRows discovered profiles as an aligned table.
func (c *Console) Table(profiles []model.Profile, maxRows int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(profiles) == 0 {
		fmt.Fprintln(c.out, color.Yellow.Sprint("No profiles to display"))
		return
	}
	if maxRows <= 0 {
		maxRows = 20
	}

	var header strings.Builder
	var rule strings.Builder
	for _, col := range tableColumns {
		header.WriteString(runewidth.FillRight(col.title, col.width) + "  ")
		rule.WriteString(strings.Repeat("─", col.width) + "  ")
	}
	fmt.Fprintln(c.out, color.Bold.Sprint(header.String()))
	fmt.Fprintln(c.out, rule.String())

	shown := profiles
	if len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	for _, p := range shown {
		company := ""
		if pos := p.CurrentPosition(); pos != nil {
			company = pos.CompanyName
		}
		cells := []string{
			strconv.Itoa(p.DepthLevel),
			p.DisplayName(),
			p.Headline,
			p.Geo.Full,
			company,
		}
		var row strings.Builder
		for i, cell := range cells {
			w := tableColumns[i].width
			row.WriteString(runewidth.FillRight(runewidth.Truncate(cell, w, "…"), w) + "  ")
		}
		fmt.Fprintln(c.out, row.String())
	}

	if rest := len(profiles) - len(shown); rest > 0 {
		fmt.Fprintln(c.out, color.Gray.Sprintf("... and %d more profiles", rest))
	}
}
