// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/talentgraph/core"
)

// SegmentEntry is the stored form of one embedding index entry.
type SegmentEntry struct {
	CandidateId core.ID
	Index       int
	Seq         uint64
	Text        string
	Vector      []float32
}

// encoder runs a field list twice: once to size the buffer, once to fill it.
type encoder struct {
	bs     []byte
	n      int
	sizing bool
}

func encode(fields func(e *encoder)) []byte {
	e := &encoder{sizing: true}
	fields(e)
	e.bs = make([]byte, e.n)
	e.n = 0
	e.sizing = false
	fields(e)
	return e.bs
}

func (e *encoder) uint64(v uint64) {
	if e.sizing {
		e.n += varint.Uint64.Size(v)
		return
	}
	e.n += varint.Uint64.Marshal(v, e.bs[e.n:])
}

func (e *encoder) int64(v int64) {
	if e.sizing {
		e.n += varint.Int64.Size(v)
		return
	}
	e.n += varint.Int64.Marshal(v, e.bs[e.n:])
}

func (e *encoder) int(v int) {
	e.int64(int64(v))
}

func (e *encoder) float32(v float32) {
	if e.sizing {
		e.n += varint.Float32.Size(v)
		return
	}
	e.n += varint.Float32.Marshal(v, e.bs[e.n:])
}

func (e *encoder) string(v string) {
	if e.sizing {
		e.n += ord.String.Size(v)
		return
	}
	e.n += ord.String.Marshal(v, e.bs[e.n:])
}

// time stores microseconds since the epoch; the zero time is stored as 0.
func (e *encoder) time(t time.Time) {
	if t.IsZero() {
		e.int64(0)
		return
	}
	e.int64(t.UnixMicro())
}

func (e *encoder) ids(ids []core.ID) {
	e.int(len(ids))
	for _, id := range ids {
		e.uint64(uint64(id))
	}
}

func (e *encoder) vector(v []float32) {
	e.int(len(v))
	for _, f := range v {
		e.float32(f)
	}
}

// decoder reads fields in order and remembers the first error.
type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) int64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) int() int {
	return int(d.int64())
}

func (d *decoder) float32() float32 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Float32.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) time() time.Time {
	v := d.int64()
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

// length reads a slice length and rejects values the remaining bytes cannot hold.
func (d *decoder) length() int {
	l := d.int()
	if d.err == nil && (l < 0 || l > len(d.bs)-d.n) {
		d.err = fmt.Errorf("%w: length %d exceeds remaining %d bytes", ErrTruncatedData, l, len(d.bs)-d.n)
		return 0
	}
	return l
}

func (d *decoder) ids() []core.ID {
	l := d.length()
	if l == 0 {
		return nil
	}
	ids := make([]core.ID, l)
	for i := range ids {
		ids[i] = core.ID(d.uint64())
	}
	return ids
}

func (d *decoder) vector() []float32 {
	l := d.length()
	if l == 0 {
		return nil
	}
	v := make([]float32, l)
	for i := range v {
		v[i] = d.float32()
	}
	return v
}

func (d *decoder) finish(what string) error {
	if d.err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, what, d.err)
	}
	return nil
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	return encode(func(e *encoder) { e.uint64(uint64(id)) })
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	d := &decoder{bs: data}
	id := core.ID(d.uint64())
	return id, d.finish("id")
}

// MarshalCandidate serializes a Candidate to bytes.
func MarshalCandidate(c *core.Candidate) []byte {
	return encode(func(e *encoder) {
		e.uint64(uint64(c.Id))
		e.string(c.Name)
		e.string(c.NormalizedName)
		e.string(c.Title)
		e.string(c.DocumentRef)
		e.string(c.Checksum)
		e.int(c.SegmentCount)
		e.int(int(c.Status))
		e.time(c.IngestedAt)
		e.ids(c.Skills)
		e.ids(c.Education)
		e.ids(c.Projects)
	})
}

// UnmarshalCandidate deserializes a Candidate from bytes.
func UnmarshalCandidate(data []byte) (*core.Candidate, error) {
	d := &decoder{bs: data}
	c := &core.Candidate{
		Id:             core.ID(d.uint64()),
		Name:           d.string(),
		NormalizedName: d.string(),
		Title:          d.string(),
		DocumentRef:    d.string(),
		Checksum:       d.string(),
		SegmentCount:   d.int(),
		Status:         core.CandidateStatus(d.int()),
		IngestedAt:     d.time(),
		Skills:         d.ids(),
		Education:      d.ids(),
		Projects:       d.ids(),
	}
	if err := d.finish("candidate"); err != nil {
		return nil, err
	}
	return c, nil
}

// MarshalNode serializes a shared Node to bytes.
func MarshalNode(n *core.Node) []byte {
	return encode(func(e *encoder) {
		e.uint64(uint64(n.Id))
		e.int(int(n.Kind))
		e.string(n.Name)
		e.string(n.Normalized)
		e.time(n.CreatedAt)
	})
}

// UnmarshalNode deserializes a shared Node from bytes.
func UnmarshalNode(data []byte) (*core.Node, error) {
	d := &decoder{bs: data}
	n := &core.Node{
		Id:         core.ID(d.uint64()),
		Kind:       core.EntityKind(d.int()),
		Name:       d.string(),
		Normalized: d.string(),
		CreatedAt:  d.time(),
	}
	if err := d.finish("node"); err != nil {
		return nil, err
	}
	return n, nil
}

// MarshalEducation serializes an Education to bytes.
func MarshalEducation(edu *core.Education) []byte {
	return encode(func(e *encoder) {
		e.uint64(uint64(edu.Id))
		e.uint64(uint64(edu.CandidateId))
		e.string(edu.Degree)
		e.uint64(uint64(edu.InstitutionId))
		e.int(edu.Year)
	})
}

// UnmarshalEducation deserializes an Education from bytes.
func UnmarshalEducation(data []byte) (*core.Education, error) {
	d := &decoder{bs: data}
	edu := &core.Education{
		Id:            core.ID(d.uint64()),
		CandidateId:   core.ID(d.uint64()),
		Degree:        d.string(),
		InstitutionId: core.ID(d.uint64()),
		Year:          d.int(),
	}
	if err := d.finish("education"); err != nil {
		return nil, err
	}
	return edu, nil
}

// MarshalProject serializes a Project to bytes.
func MarshalProject(p *core.Project) []byte {
	return encode(func(e *encoder) {
		e.uint64(uint64(p.Id))
		e.uint64(uint64(p.CandidateId))
		e.string(p.Name)
		e.string(p.Role)
		e.string(p.Description)
		e.ids(p.Technologies)
	})
}

// UnmarshalProject deserializes a Project from bytes.
func UnmarshalProject(data []byte) (*core.Project, error) {
	d := &decoder{bs: data}
	p := &core.Project{
		Id:           core.ID(d.uint64()),
		CandidateId:  core.ID(d.uint64()),
		Name:         d.string(),
		Role:         d.string(),
		Description:  d.string(),
		Technologies: d.ids(),
	}
	if err := d.finish("project"); err != nil {
		return nil, err
	}
	return p, nil
}

// MarshalTextSegment serializes a graph TextSegment to bytes. The vector is not stored.
func MarshalTextSegment(s *core.TextSegment) []byte {
	return encode(func(e *encoder) {
		e.uint64(uint64(s.CandidateId))
		e.int(s.Index)
		e.string(s.Text)
	})
}

// UnmarshalTextSegment deserializes a graph TextSegment from bytes.
func UnmarshalTextSegment(data []byte) (*core.TextSegment, error) {
	d := &decoder{bs: data}
	s := &core.TextSegment{
		CandidateId: core.ID(d.uint64()),
		Index:       d.int(),
		Text:        d.string(),
	}
	if err := d.finish("text segment"); err != nil {
		return nil, err
	}
	return s, nil
}

// MarshalSegmentEntry serializes an index entry to bytes.
func MarshalSegmentEntry(s *SegmentEntry) []byte {
	return encode(func(e *encoder) {
		e.uint64(uint64(s.CandidateId))
		e.int(s.Index)
		e.uint64(s.Seq)
		e.string(s.Text)
		e.vector(s.Vector)
	})
}

// UnmarshalSegmentEntry deserializes an index entry from bytes.
func UnmarshalSegmentEntry(data []byte) (*SegmentEntry, error) {
	d := &decoder{bs: data}
	s := &SegmentEntry{
		CandidateId: core.ID(d.uint64()),
		Index:       d.int(),
		Seq:         d.uint64(),
		Text:        d.string(),
		Vector:      d.vector(),
	}
	if err := d.finish("segment entry"); err != nil {
		return nil, err
	}
	return s, nil
}
