package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/rotisserie/eris"

	"github.com/linkdapi/leads-cli/internal/model"
)

// renderDepthCap bounds tree rendering depth regardless of discovery depth.
const renderDepthCap = 5

// ToTree writes a parent/child text tree keyed by each record's source URN.
// Roots are the depth-0 records. At most maxChildren children are rendered
// per node, with an elision line for the rest.
func ToTree(profiles []model.Profile, outputDir, filename string, maxChildren int) (string, error) {
	if len(profiles) == 0 {
		return "", eris.New("export: no profiles to export")
	}
	if maxChildren <= 0 {
		maxChildren = 10
	}

	path, err := resolvePath(outputDir, filename, "linkedin_leads_tree", ".txt")
	if err != nil {
		return "", err
	}

	// Insertion-ordered index so sibling order is discovery order.
	children := orderedmap.NewOrderedMap[string, []model.Profile]()
	var roots []model.Profile
	for _, p := range profiles {
		if p.SourceURN != "" {
			siblings, _ := children.Get(p.SourceURN)
			children.Set(p.SourceURN, append(siblings, p))
		}
		if p.DepthLevel == 0 {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 {
		return "", eris.New("export: no root profiles found")
	}

	var b strings.Builder
	banner := strings.Repeat("=", 80)
	b.WriteString(banner + "\n")
	b.WriteString("LinkedIn Discovery Tree\n")
	fmt.Fprintf(&b, "Total Profiles: %d\n", len(profiles))
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(banner + "\n\n")

	for _, root := range roots {
		b.WriteString(profileText(root, children) + "\n")
		renderChildren(&b, root, children, "", 0, maxChildren)
		b.WriteString("\n")
	}

	b.WriteString("\n" + banner + "\n")
	fmt.Fprintf(&b, "End of Tree - %d total profiles\n", len(profiles))
	b.WriteString(banner + "\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", eris.Wrap(err, "export: write tree file")
	}
	return path, nil
}

func renderChildren(b *strings.Builder, parent model.Profile, children *orderedmap.OrderedMap[string, []model.Profile], prefix string, depth, maxChildren int) {
	if depth >= renderDepthCap {
		return
	}

	kids, _ := children.Get(parent.URN)
	if len(kids) == 0 {
		return
	}

	visible := kids
	if len(visible) > maxChildren {
		visible = visible[:maxChildren]
	}
	hidden := len(kids) - len(visible)

	for i, child := range visible {
		last := i == len(visible)-1 && hidden == 0
		if last {
			fmt.Fprintf(b, "%s└── %s\n", prefix, profileText(child, children))
			renderChildren(b, child, children, prefix+"    ", depth+1, maxChildren)
		} else {
			fmt.Fprintf(b, "%s├── %s\n", prefix, profileText(child, children))
			renderChildren(b, child, children, prefix+"│   ", depth+1, maxChildren)
		}
	}

	if hidden > 0 {
		fmt.Fprintf(b, "%s└── ... and %d more profiles\n", prefix, hidden)
	}
}

func profileText(p model.Profile, children *orderedmap.OrderedMap[string, []model.Profile]) string {
	name := p.DisplayName()
	if name == "" {
		name = "Unknown"
	}

	headline := p.Headline
	if headline == "" {
		headline = "No headline"
	}

	text := name + " | " + headline
	if p.Geo.Full != "" {
		text += " | " + p.Geo.Full
	}
	if kids, _ := children.Get(p.URN); len(kids) > 0 {
		text += fmt.Sprintf(" (%d discovered)", len(kids))
	}
	text += "\n" + "    LinkedIn: linkedin.com/in/" + p.Username
	return text
}
