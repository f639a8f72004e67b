package export

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdapi/leads-cli/internal/model"
)

func treeProfile(username, sourceURN string, depth int) model.Profile {
	return model.Profile{
		URN:        "urn:li:" + username,
		Username:   username,
		FirstName:  strings.ToUpper(username[:1]),
		LastName:   username[1:],
		Headline:   username + " headline",
		DepthLevel: depth,
		SourceURN:  sourceURN,
	}
}

func renderTree(t *testing.T, profiles []model.Profile, maxChildren int) string {
	t.Helper()
	path, err := ToTree(profiles, t.TempDir(), "tree.txt", maxChildren)
	require.NoError(t, err)
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(out)
}

func TestToTree_ParentChildRendering(t *testing.T) {
	profiles := []model.Profile{
		treeProfile("alice", "", 0),
		treeProfile("bob", "urn:li:alice", 1),
		treeProfile("carol", "urn:li:alice", 1),
		treeProfile("dave", "urn:li:bob", 2),
	}

	out := renderTree(t, profiles, 10)

	assert.Contains(t, out, "LinkedIn Discovery Tree")
	assert.Contains(t, out, "Total Profiles: 4")
	// Alice shows her direct-children count.
	assert.Contains(t, out, "(2 discovered)")
	assert.Contains(t, out, "├── B ob")
	assert.Contains(t, out, "└── C arol")
	assert.Contains(t, out, "linkedin.com/in/dave")
	// Dave nests under bob.
	assert.Contains(t, out, "    └── D ave")
}

func TestToTree_ElidesExtraChildren(t *testing.T) {
	profiles := []model.Profile{
		treeProfile("alice", "", 0),
		treeProfile("bob", "urn:li:alice", 1),
		treeProfile("carol", "urn:li:alice", 1),
		treeProfile("dave", "urn:li:alice", 1),
	}

	out := renderTree(t, profiles, 1)

	assert.Contains(t, out, "├── B ob")
	assert.Contains(t, out, "... and 2 more profiles")
	assert.NotContains(t, out, "└── C arol")
}

func TestToTree_DepthCap(t *testing.T) {
	// A chain deeper than the render cap: levels 0..6.
	profiles := []model.Profile{treeProfile("p0", "", 0)}
	for i := 1; i <= 6; i++ {
		profiles = append(profiles, treeProfile(
			"p"+strings.Repeat("x", i),
			profiles[i-1].URN,
			i,
		))
	}

	out := renderTree(t, profiles, 10)

	// Level 5 is the last rendered child; level 6 is cut off.
	assert.Contains(t, out, "linkedin.com/in/p"+strings.Repeat("x", 5))
	assert.NotContains(t, out, "linkedin.com/in/p"+strings.Repeat("x", 6))
}

func TestToTree_NoRoots(t *testing.T) {
	profiles := []model.Profile{treeProfile("bob", "urn:li:alice", 1)}
	_, err := ToTree(profiles, t.TempDir(), "", 10)
	assert.Error(t, err)
}
