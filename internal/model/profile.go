package model

import (
	"encoding/json"
	"strings"
)

// FlexID is an opaque identifier that decodes from either a JSON number or
// a JSON string; the API is inconsistent about which it sends.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = FlexID(s)
	return nil
}

func (f FlexID) String() string {
	return string(f)
}

// Profile is a single discovered profile record. Field names follow the
// LinkdAPI payload; DepthLevel and SourceURN are injected by the discovery
// engine and identify where in the discovery tree the record was found.
type Profile struct {
	ID             FlexID      `json:"id,omitempty"`
	URN            string      `json:"urn"`
	Username       string      `json:"username"`
	FirstName      string      `json:"firstName,omitempty"`
	LastName       string      `json:"lastName,omitempty"`
	Headline       string      `json:"headline,omitempty"`
	Summary        string      `json:"summary,omitempty"`
	IsCreator      bool        `json:"isCreator,omitempty"`
	IsPremium      bool        `json:"isPremium,omitempty"`
	ProfilePicture string      `json:"profilePicture,omitempty"`
	Geo            Geo         `json:"geo,omitempty"`
	Languages      []Language  `json:"languages,omitempty"`
	Positions      []Position  `json:"position,omitempty"`
	Skills         []Skill     `json:"skills,omitempty"`
	Educations     []Education `json:"educations,omitempty"`

	// DepthLevel is the BFS level the profile was first discovered at;
	// 0 marks a seed profile.
	DepthLevel int `json:"depth_level"`
	// SourceURN is the URN of the profile whose expansion discovered this
	// one. Empty for seeds.
	SourceURN string `json:"source_urn"`
}

// Geo holds location info for a profile.
type Geo struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Full    string `json:"full,omitempty"`
}

// Language is a spoken language entry.
type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Position is a single employment history entry. The first entry is the
// current position.
type Position struct {
	Title       string `json:"title,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	CompanyURL  string `json:"companyURL,omitempty"`
	Description string `json:"description,omitempty"`
}

// Skill is a named skill entry.
type Skill struct {
	Name string `json:"name"`
}

// Education is a single education history entry.
type Education struct {
	SchoolName   string `json:"schoolName,omitempty"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
}

// DisplayName returns "First Last", falling back to the username when both
// name parts are empty.
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Username
	}
	return name
}

// CurrentPosition returns the first position entry, or nil.
func (p *Profile) CurrentPosition() *Position {
	if len(p.Positions) == 0 {
		return nil
	}
	return &p.Positions[0]
}

// Candidate is one entry from a similar-profiles lookup. Only URN and ID are
// guaranteed present; the handle may live in either Username or
// PublicIdentifier depending on the endpoint variant.
type Candidate struct {
	URN              string `json:"urn"`
	ID               FlexID `json:"id"`
	Username         string `json:"username,omitempty"`
	PublicIdentifier string `json:"publicIdentifier,omitempty"`
}

// Handle returns the username to fetch the candidate's full profile with,
// preferring Username over PublicIdentifier. Empty when neither is set.
func (c *Candidate) Handle() string {
	if c.Username != "" {
		return c.Username
	}
	return c.PublicIdentifier
}
