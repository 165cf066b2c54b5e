package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("Jane Doe\nGo developer"))
	b := Checksum([]byte("Jane Doe\nGo developer"))
	c := Checksum([]byte("Jane Doe\nGo developer "))

	if a != b {
		t.Errorf("Checksum() not stable: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("Checksum() ignored a trailing byte")
	}
	if len(a) != 64 {
		t.Errorf("Checksum() length = %d, want 64 hex chars", len(a))
	}
}

func TestNodeID_SharedAcrossKindsDiffers(t *testing.T) {
	skill := NodeID(KindSkill, "go")
	tech := NodeID(KindTechnology, "go")

	if skill == tech {
		t.Errorf("skill and technology with the same name must have distinct IDs")
	}
	if skill != NodeID(KindSkill, NormalizeName(" Go ")) {
		t.Errorf("NodeID() must be stable for normalized names")
	}
}

func TestOwnedID(t *testing.T) {
	cand := IDFromContent("checksum")

	if OwnedID(cand, KindEducation, 0) == OwnedID(cand, KindEducation, 1) {
		t.Errorf("OwnedID() collided across indices")
	}
	if OwnedID(cand, KindEducation, 0) == OwnedID(cand, KindProject, 0) {
		t.Errorf("OwnedID() collided across kinds")
	}
	if OwnedID(cand, KindProject, 2) != OwnedID(cand, KindProject, 2) {
		t.Errorf("OwnedID() not deterministic")
	}
}

func TestRelationKind_Ends(t *testing.T) {
	tests := []struct {
		rel      RelationKind
		from, to EntityKind
		name     string
	}{
		{RelHasSkill, KindCandidate, KindSkill, "HAS_SKILL"},
		{RelStudied, KindCandidate, KindEducation, "STUDIED"},
		{RelAtInstitution, KindEducation, KindInstitution, "AT_INSTITUTION"},
		{RelWorkedOn, KindCandidate, KindProject, "WORKED_ON"},
		{RelUses, KindProject, KindTechnology, "USES"},
		{RelHasSegment, KindCandidate, KindTextSegment, "HAS_SEGMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := tt.rel.Ends()
			if from != tt.from || to != tt.to {
				t.Errorf("Ends() = (%v, %v), want (%v, %v)", from, to, tt.from, tt.to)
			}
			if tt.rel.String() != tt.name {
				t.Errorf("String() = %q, want %q", tt.rel.String(), tt.name)
			}
			parsed, ok := ParseRelationKind(tt.name)
			if !ok || parsed != tt.rel {
				t.Errorf("ParseRelationKind(%q) = %v, %v", tt.name, parsed, ok)
			}
		})
	}
}

func TestParseCandidateStatus(t *testing.T) {
	for _, status := range []CandidateStatus{StatusIndexed, StatusIndexIncomplete} {
		parsed, ok := ParseCandidateStatus(status.String())
		if !ok || parsed != status {
			t.Errorf("ParseCandidateStatus(%q) = %v, %v", status.String(), parsed, ok)
		}
	}
	if _, ok := ParseCandidateStatus("bogus"); ok {
		t.Errorf("ParseCandidateStatus() accepted an unknown status")
	}
}
