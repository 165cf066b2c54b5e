package core

// CandidateDraft is the extracted, not yet persisted form of a Candidate and its subgraph.
type CandidateDraft struct {
	Name        string
	Title       string
	DocumentRef string
	Checksum    string
	Skills      []string
	Education   []EducationDraft
	Projects    []ProjectDraft
	Segments    []string // Segment texts in order
}

// EducationDraft references its Institution by name.
type EducationDraft struct {
	Degree      string
	Institution string
	Year        int
}

// ProjectDraft references its Technologies by name, in order.
type ProjectDraft struct {
	Name         string
	Role         string
	Description  string
	Technologies []string
}
