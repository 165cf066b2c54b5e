package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/talentgraph/core"
)

// Key prefixes for different data types
const (
	candidatePrefix         = "cand:"   // cand:<id> -> Candidate
	candidateChecksumPrefix = "candck:" // candck:<checksum> -> ID
	candidateNamePrefix     = "candnm:" // candnm:<normalized>\x00<id> -> ID
	candidateTimePrefix     = "candts:" // candts:<ingested micros><id> -> ID
	nodePrefix              = "node:"   // node:<id> -> Node
	educationPrefix         = "edu:"    // edu:<id> -> Education
	projectPrefix           = "proj:"   // proj:<id> -> Project
	segmentPrefix           = "seg:"    // seg:<id> -> TextSegment
	adjacencyPrefix         = "adj:"    // adj:<rel><from><to>
	reverseAdjacencyPrefix  = "radj:"   // radj:<rel><to><from>
	indexEntryPrefix        = "sidx:"   // sidx:<candidate><segment index> -> SegmentEntry
	indexDimensionKey       = "sidxmeta:dim"
	indexSeq                = "sidxseq"
)

// idKey builds prefix followed by the big-endian ID.
func idKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

func makeCandidateKey(id core.ID) []byte {
	return idKey(candidatePrefix, id)
}

func makeChecksumKey(checksum string) []byte {
	return []byte(candidateChecksumPrefix + checksum)
}

// makeNameKey generates a composite key for the name index.
// Format: prefix:normalized\x00id
func makeNameKey(normalized string, id core.ID) []byte {
	prefix := makePartialNameKey(normalized)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialNameKey generates the prefix for every candidate sharing a normalized name.
// The NUL terminator keeps "ann" from matching "anna".
func makePartialNameKey(normalized string) []byte {
	return []byte(candidateNamePrefix + normalized + "\x00")
}

// makeTimeKey generates a composite key for the recency index.
// Format: prefix:timestamp:id, both big-endian so lexicographic order is chronological.
func makeTimeKey(ts time.Time, id core.ID) []byte {
	buf := make([]byte, len(candidateTimePrefix)+16)
	offset := copy(buf, candidateTimePrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(ts.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeTimeSeekEnd returns a key sorting after every recency key.
func makeTimeSeekEnd() []byte {
	buf := make([]byte, len(candidateTimePrefix)+17)
	offset := copy(buf, candidateTimePrefix)
	for i := offset; i < len(buf); i++ {
		buf[i] = 0xFF
	}
	return buf
}

func makeNodeKey(id core.ID) []byte {
	return idKey(nodePrefix, id)
}

func makeEducationKey(id core.ID) []byte {
	return idKey(educationPrefix, id)
}

func makeProjectKey(id core.ID) []byte {
	return idKey(projectPrefix, id)
}

func makeSegmentKey(id core.ID) []byte {
	return idKey(segmentPrefix, id)
}

// makeEdgeKey generates an adjacency key.
// Format: prefix rel a b, where a is the traversal origin.
func makeEdgeKey(prefix string, rel core.RelationKind, a, b core.ID) []byte {
	buf := make([]byte, len(prefix)+17)
	offset := copy(buf, prefix)
	buf[offset] = byte(rel)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(a))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(b))
	return buf
}

// makePartialEdgeKey generates the prefix of every edge of rel leaving a.
func makePartialEdgeKey(prefix string, rel core.RelationKind, a core.ID) []byte {
	buf := make([]byte, len(prefix)+9)
	offset := copy(buf, prefix)
	buf[offset] = byte(rel)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(a))
	return buf
}

// edgeTarget extracts the far end of an adjacency key.
func edgeTarget(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeIndexKey generates the key of one embedding index entry.
// Format: prefix candidate index
func makeIndexKey(candidateID core.ID, index int) []byte {
	buf := make([]byte, len(indexEntryPrefix)+16)
	offset := copy(buf, indexEntryPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(candidateID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

func makePartialIndexKey(candidateID core.ID) []byte {
	return idKey(indexEntryPrefix, candidateID)
}
