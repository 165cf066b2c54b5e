package core

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for graph entities.
// Candidate and shared-node IDs are content-derived; owned entities derive
// theirs from the owning candidate.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Checksum returns the hex encoded BLAKE2b-256 digest of raw document bytes.
func Checksum(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// EntityKind identifies the type of a graph entity.
type EntityKind int

const (
	KindCandidate EntityKind = iota + 1
	KindSkill
	KindInstitution
	KindTechnology
	KindEducation
	KindProject
	KindTextSegment
)

var entityKindNames = map[EntityKind]string{
	KindCandidate:   "candidate",
	KindSkill:       "skill",
	KindInstitution: "institution",
	KindTechnology:  "technology",
	KindEducation:   "education",
	KindProject:     "project",
	KindTextSegment: "text_segment",
}

func (k EntityKind) String() string {
	if name, ok := entityKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsShared reports whether entities of this kind are deduplicated globally by normalized name.
func (k EntityKind) IsShared() bool {
	return k == KindSkill || k == KindInstitution || k == KindTechnology
}

// ParseEntityKind returns the kind with the given String form.
func ParseEntityKind(s string) (EntityKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range entityKindNames {
		if name == s {
			return kind, true
		}
	}
	return 0, false
}

// RelationKind identifies a typed edge in the graph.
type RelationKind int

const (
	// RelHasSkill links Candidate to Skill.
	RelHasSkill RelationKind = iota + 1
	// RelStudied links Candidate to Education.
	RelStudied
	// RelAtInstitution links Education to Institution.
	RelAtInstitution
	// RelWorkedOn links Candidate to Project.
	RelWorkedOn
	// RelUses links Project to Technology.
	RelUses
	// RelHasSegment links Candidate to TextSegment.
	RelHasSegment
)

type relationEnds struct {
	name     string
	from, to EntityKind
}

var relationTable = map[RelationKind]relationEnds{
	RelHasSkill:      {"HAS_SKILL", KindCandidate, KindSkill},
	RelStudied:       {"STUDIED", KindCandidate, KindEducation},
	RelAtInstitution: {"AT_INSTITUTION", KindEducation, KindInstitution},
	RelWorkedOn:      {"WORKED_ON", KindCandidate, KindProject},
	RelUses:          {"USES", KindProject, KindTechnology},
	RelHasSegment:    {"HAS_SEGMENT", KindCandidate, KindTextSegment},
}

func (r RelationKind) String() string {
	if ends, ok := relationTable[r]; ok {
		return ends.name
	}
	return "UNKNOWN"
}

// Ends returns the source and target entity kinds of the relation.
func (r RelationKind) Ends() (from, to EntityKind) {
	ends := relationTable[r]
	return ends.from, ends.to
}

// ParseRelationKind returns the relation with the given String form.
func ParseRelationKind(s string) (RelationKind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for rel, ends := range relationTable {
		if ends.name == s {
			return rel, true
		}
	}
	return 0, false
}

// CandidateStatus tracks whether a candidate's segments are present in the embedding index.
type CandidateStatus int

const (
	// StatusIndexIncomplete marks a candidate whose segments still need to be written to the index.
	StatusIndexIncomplete CandidateStatus = iota + 1
	// StatusIndexed marks a candidate whose segments are all in the index.
	StatusIndexed
)

func (s CandidateStatus) String() string {
	switch s {
	case StatusIndexIncomplete:
		return "index_incomplete"
	case StatusIndexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// ParseCandidateStatus parses the String form of a status.
func ParseCandidateStatus(s string) (CandidateStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "index_incomplete":
		return StatusIndexIncomplete, true
	case "indexed":
		return StatusIndexed, true
	}
	return 0, false
}

// Candidate is a person whose source document has been ingested.
// One Candidate exists per unique document checksum.
type Candidate struct {
	Id             ID
	Name           string
	NormalizedName string
	Title          string
	DocumentRef    string // Where the raw text came from (file path, upload key)
	Checksum       string // Immutable once set
	SegmentCount   int
	Status         CandidateStatus
	IngestedAt     time.Time
	Skills         []ID // Skill node IDs, HAS_SKILL
	Education      []ID // Education IDs, STUDIED
	Projects       []ID // Project IDs, WORKED_ON
}

// Summary returns the listing view of the candidate.
func (c *Candidate) Summary() CandidateSummary {
	return CandidateSummary{
		Id:         c.Id,
		Name:       c.Name,
		Title:      c.Title,
		Status:     c.Status,
		IngestedAt: c.IngestedAt,
		SkillCount: len(c.Skills),
	}
}

// CandidateSummary is the listing view of a Candidate.
type CandidateSummary struct {
	Id         ID
	Name       string
	Title      string
	Status     CandidateStatus
	IngestedAt time.Time
	SkillCount int
}

// Node is a globally shared entity (Skill, Institution or Technology),
// unique by kind and normalized name.
type Node struct {
	Id         ID
	Kind       EntityKind
	Name       string // Display name as first seen
	Normalized string
	CreatedAt  time.Time
}

// NodeID returns the deterministic identifier of a shared node.
func NodeID(kind EntityKind, normalized string) ID {
	return IDFromContent(kind.String() + ":" + normalized)
}

// Education is owned by exactly one Candidate.
type Education struct {
	Id            ID
	CandidateId   ID
	Degree        string
	InstitutionId ID
	Year          int // 0 when unknown
}

// Project is owned by exactly one Candidate.
type Project struct {
	Id           ID
	CandidateId  ID
	Name         string
	Role         string
	Description  string
	Technologies []ID // Ordered Technology node IDs, USES
}

// TextSegment is a chunk of a candidate's source text.
// The graph keeps the text; the embedding index keeps the vector.
type TextSegment struct {
	CandidateId ID
	Index       int
	Text        string
	Vector      []float32
}

// OwnedID derives the ID of an entity owned by a candidate.
func OwnedID(candidate ID, kind EntityKind, index int) ID {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(candidate))
	return IDFromContent(kind.String() + ":" + hex.EncodeToString(buf[:]) + ":" + strconv.Itoa(index))
}

// Entity is a uniform view of any graph entity, returned by neighbor traversal.
type Entity struct {
	Id       ID
	Kind     EntityKind
	Name     string
	Relation RelationKind      // Relation through which the entity was reached
	Attrs    map[string]string // Kind-specific attributes (degree, year, role, description, title)
}

// ResolvedEducation is an Education with its Institution resolved.
type ResolvedEducation struct {
	Education
	Institution string
}

// ResolvedProject is a Project with its Technologies resolved.
type ResolvedProject struct {
	Project
	TechnologyNames []string
}

// CandidateRecord is a Candidate with its owned and shared neighbors resolved.
type CandidateRecord struct {
	Candidate
	SkillNames       []string
	EducationDetails []ResolvedEducation
	ProjectDetails   []ResolvedProject
}
