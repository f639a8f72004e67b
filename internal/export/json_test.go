package export

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdapi/leads-cli/internal/model"
)

func TestToJSON_RoundTrip(t *testing.T) {
	profiles := []model.Profile{
		{URN: "urn:li:alice", Username: "alice", Headline: "Engineer"},
		{URN: "urn:li:bob", Username: "bob", DepthLevel: 1, SourceURN: "urn:li:alice"},
	}

	path, err := ToJSON(profiles, t.TempDir(), "leads.json")
	require.NoError(t, err)

	out, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []model.Profile
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, profiles, decoded)

	// Engine-injected fields keep their wire names.
	assert.Contains(t, string(out), `"depth_level"`)
	assert.Contains(t, string(out), `"source_urn"`)
}

func TestToJSON_DefaultFilename(t *testing.T) {
	dir := t.TempDir()
	path, err := ToJSON([]model.Profile{{URN: "u", Username: "n"}}, dir, "")
	require.NoError(t, err)
	assert.Contains(t, path, "linkedin_leads_")
	assert.Contains(t, path, ".json")
}
