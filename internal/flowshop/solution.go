package flowshop

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"horseHerd/internal/rng"
)

// Solution is one job permutation over an instance. The makespan and the
// completion-time matrix are derived state: computed lazily and cached until
// the sequence is mutated.
type Solution struct {
	inst *Instance
	seq  []int

	makespan int
	// completion holds Jobs*Machines entries, row per sequence position.
	// The backing slice is reused between recomputations.
	completion []int
	dirty      bool
}

// NewSolution builds the identity permutation over the instance.
func NewSolution(inst *Instance) (*Solution, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	seq := make([]int, inst.Jobs)
	for i := range seq {
		seq[i] = i
	}
	return &Solution{inst: inst, seq: seq, makespan: -1, dirty: true}, nil
}

// NewSolutionFrom builds a solution from an explicit job sequence.
func NewSolutionFrom(seq []int, inst *Instance) (*Solution, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if err := ValidatePermutation(seq, inst.Jobs); err != nil {
		return nil, err
	}
	s := &Solution{inst: inst, seq: make([]int, len(seq)), makespan: -1, dirty: true}
	copy(s.seq, seq)
	return s, nil
}

// Clone returns a deep copy. The cached completion times are copied too, so
// neither solution can invalidate the other.
func (s *Solution) Clone() *Solution {
	c := &Solution{
		inst:     s.inst,
		seq:      make([]int, len(s.seq)),
		makespan: s.makespan,
		dirty:    s.dirty,
	}
	copy(c.seq, s.seq)
	if s.completion != nil {
		c.completion = make([]int, len(s.completion))
		copy(c.completion, s.completion)
	}
	return c
}

func (s *Solution) Instance() *Instance { return s.inst }

func (s *Solution) Jobs() int { return len(s.seq) }

// Sequence returns a copy of the job sequence.
func (s *Solution) Sequence() []int {
	out := make([]int, len(s.seq))
	copy(out, s.seq)
	return out
}

func (s *Solution) JobAt(position int) (int, error) {
	if position < 0 || position >= len(s.seq) {
		return 0, fmt.Errorf("%w: position %d not in [0,%d)", ErrRange, position, len(s.seq))
	}
	return s.seq[position], nil
}

func (s *Solution) SetSequence(seq []int) error {
	if err := ValidatePermutation(seq, s.inst.Jobs); err != nil {
		return err
	}
	copy(s.seq, seq)
	s.invalidate()
	return nil
}

// Swap exchanges the jobs at two positions.
func (s *Solution) Swap(i, j int) error {
	if i < 0 || i >= len(s.seq) || j < 0 || j >= len(s.seq) {
		return fmt.Errorf("%w: positions (%d,%d) not in [0,%d)", ErrRange, i, j, len(s.seq))
	}
	s.swap(i, j)
	return nil
}

// MustSwap is Swap for indices the caller already knows to be in range.
func (s *Solution) MustSwap(i, j int) {
	if err := s.Swap(i, j); err != nil {
		panic(err)
	}
}

// Relocate removes the job at position from and reinserts it at position to.
// from == to is a no-op.
func (s *Solution) Relocate(from, to int) error {
	if from < 0 || from >= len(s.seq) || to < 0 || to >= len(s.seq) {
		return fmt.Errorf("%w: positions (%d,%d) not in [0,%d)", ErrRange, from, to, len(s.seq))
	}
	s.relocate(from, to)
	return nil
}

// MustRelocate is Relocate for indices the caller already knows to be in range.
func (s *Solution) MustRelocate(from, to int) {
	if err := s.Relocate(from, to); err != nil {
		panic(err)
	}
}

func (s *Solution) swap(i, j int) {
	s.seq[i], s.seq[j] = s.seq[j], s.seq[i]
	s.invalidate()
}

func (s *Solution) relocate(from, to int) {
	if from == to {
		return
	}
	val := s.seq[from]
	if from < to {
		copy(s.seq[from:to], s.seq[from+1:to+1])
	} else {
		copy(s.seq[to+1:from+1], s.seq[to:from])
	}
	s.seq[to] = val
	s.invalidate()
}

// Makespan returns the completion time of the last job on the last machine,
// recomputing the schedule only if the sequence changed since the last call.
func (s *Solution) Makespan() int {
	if s.dirty {
		s.compute()
	}
	return s.makespan
}

// CompletionTime returns the completion time of the job at a sequence
// position on a machine.
func (s *Solution) CompletionTime(position, machine int) (int, error) {
	if s.dirty {
		s.compute()
	}
	if position < 0 || position >= len(s.seq) || machine < 0 || machine >= s.inst.Machines {
		return 0, fmt.Errorf("%w: position %d machine %d not in %dx%d",
			ErrRange, position, machine, len(s.seq), s.inst.Machines)
	}
	return s.completion[position*s.inst.Machines+machine], nil
}

func (s *Solution) compute() {
	n := len(s.seq)
	m := s.inst.Machines
	if s.completion == nil {
		s.completion = make([]int, n*m)
	}
	c := s.completion

	for pos, job := range s.seq {
		for machine := 0; machine < m; machine++ {
			t := s.inst.Time(job, machine)
			switch {
			case pos == 0 && machine == 0:
				c[0] = t
			case pos == 0:
				c[machine] = c[machine-1] + t
			case machine == 0:
				c[pos*m] = c[(pos-1)*m] + t
			default:
				up := c[(pos-1)*m+machine]
				left := c[pos*m+machine-1]
				if left > up {
					c[pos*m+machine] = left + t
				} else {
					c[pos*m+machine] = up + t
				}
			}
		}
	}

	s.makespan = 0
	if n > 0 {
		s.makespan = c[n*m-1]
	}
	s.dirty = false
}

func (s *Solution) invalidate() {
	s.dirty = true
	s.makespan = -1
}

// InitializeRandom shuffles the sequence uniformly.
func (s *Solution) InitializeRandom(r *rng.Source) {
	r.Shuffle(s.seq)
	s.invalidate()
}

// InitializeGreedy sorts jobs ascending by total processing time over all
// machines, breaking ties by job id.
func (s *Solution) InitializeGreedy() {
	totals := make([]int, s.inst.Jobs)
	for job := 0; job < s.inst.Jobs; job++ {
		totals[job] = s.inst.TotalTime(job)
		s.seq[job] = job
	}
	sort.Slice(s.seq, func(i, j int) bool {
		a, b := s.seq[i], s.seq[j]
		if totals[a] != totals[b] {
			return totals[a] < totals[b]
		}
		return a < b
	})
	s.invalidate()
}

// SwapNeighbor returns a copy with two uniformly chosen positions swapped.
// The positions may coincide.
func (s *Solution) SwapNeighbor(r *rng.Source) *Solution {
	neighbor := s.Clone()
	pos1 := r.Int(0, len(s.seq)-1)
	pos2 := r.Int(0, len(s.seq)-1)
	neighbor.swap(pos1, pos2)
	return neighbor
}

// RelocateNeighbor returns a copy with one job moved to a uniformly chosen
// position. Coinciding positions leave the copy unchanged.
func (s *Solution) RelocateNeighbor(r *rng.Source) *Solution {
	neighbor := s.Clone()
	from := r.Int(0, len(s.seq)-1)
	to := r.Int(0, len(s.seq)-1)
	neighbor.relocate(from, to)
	return neighbor
}

// DistanceTo counts positions holding different job ids.
func (s *Solution) DistanceTo(other *Solution) int {
	if len(s.seq) != len(other.seq) {
		return math.MaxInt
	}
	distance := 0
	for i := range s.seq {
		if s.seq[i] != other.seq[i] {
			distance++
		}
	}
	return distance
}

func (s *Solution) IsValid() bool {
	return ValidatePermutation(s.seq, s.inst.Jobs) == nil
}

// String renders the 1-based job order, e.g. "J3 -> J1 -> J2".
func (s *Solution) String() string {
	var b strings.Builder
	for i, job := range s.seq {
		if i > 0 {
			b.WriteString(" -> ")
		}
		fmt.Fprintf(&b, "J%d", job+1)
	}
	return b.String()
}
