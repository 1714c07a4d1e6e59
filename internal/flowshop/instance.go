package flowshop

import (
	"fmt"
	"os"

	"horseHerd/internal/rng"
)

type Instance struct {
	Name     string
	Jobs     int
	Machines int
	// ProcTimes length must be Jobs*Machines.
	ProcTimes []int
}

func NewInstance(name string, jobs, machines int, procTimes []int) (*Instance, error) {
	inst := &Instance{Name: name, Jobs: jobs, Machines: machines, ProcTimes: procTimes}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return fmt.Errorf("%w: instance is nil", ErrValidation)
	}
	if inst.Jobs <= 0 {
		return fmt.Errorf("%w: jobs must be > 0 (got %d)", ErrValidation, inst.Jobs)
	}
	if inst.Machines <= 0 {
		return fmt.Errorf("%w: machines must be > 0 (got %d)", ErrValidation, inst.Machines)
	}
	if len(inst.ProcTimes) != inst.Jobs*inst.Machines {
		return fmt.Errorf("%w: procTimes length must be jobs*machines=%d (got %d)",
			ErrValidation, inst.Jobs*inst.Machines, len(inst.ProcTimes))
	}
	for i, v := range inst.ProcTimes {
		if v < 0 {
			return fmt.Errorf("%w: procTimes[%d] must be >= 0 (got %d)", ErrValidation, i, v)
		}
	}
	return nil
}

func (inst *Instance) Time(job, machine int) int {
	return inst.ProcTimes[job*inst.Machines+machine]
}

// TotalTime returns the processing time of a job summed over all machines.
func (inst *Instance) TotalTime(job int) int {
	total := 0
	for m := 0; m < inst.Machines; m++ {
		total += inst.Time(job, m)
	}
	return total
}

func RandomInstance(jobs, machines, minTime, maxTime int, r *rng.Source) *Instance {
	if r == nil {
		panic("генератор случайных чисел не инициализирован (nil)")
	}
	if minTime < 0 || maxTime < 0 || maxTime < minTime {
		panic("invalid time bounds")
	}
	pt := make([]int, jobs*machines)
	for i := range pt {
		pt[i] = r.Int(minTime, maxTime)
	}
	name := fmt.Sprintf("Random_%dx%d", jobs, machines)
	inst, err := NewInstance(name, jobs, machines, pt)
	if err != nil {
		panic(err)
	}
	return inst
}

// LoadInstance reads an instance from a text file: a "jobs machines" header
// line followed by jobs lines of machines integers.
func LoadInstance(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var jobs, machines int
	if _, err := fmt.Fscan(f, &jobs, &machines); err != nil {
		return nil, fmt.Errorf("%w: bad header in %s: %v", ErrValidation, path, err)
	}
	if jobs <= 0 || machines <= 0 {
		return nil, fmt.Errorf("%w: bad dimensions %dx%d in %s", ErrValidation, jobs, machines, path)
	}

	pt := make([]int, jobs*machines)
	for i := range pt {
		if _, err := fmt.Fscan(f, &pt[i]); err != nil {
			return nil, fmt.Errorf("%w: truncated processing times in %s: %v", ErrValidation, path, err)
		}
	}
	return NewInstance(path, jobs, machines, pt)
}

// SaveInstance writes the instance in the same format LoadInstance reads.
func (inst *Instance) SaveInstance(path string) error {
	if err := inst.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d %d\n", inst.Jobs, inst.Machines); err != nil {
		return err
	}
	for job := 0; job < inst.Jobs; job++ {
		for machine := 0; machine < inst.Machines; machine++ {
			sep := " "
			if machine == inst.Machines-1 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(f, "%d%s", inst.Time(job, machine), sep); err != nil {
				return err
			}
		}
	}
	return nil
}
