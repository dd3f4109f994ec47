// Package procstat samples the memory usage of a player process tree.
//
// The shell that launches a player may or may not exec the program in place,
// so samples cover the root process and all of its descendants. Sampling is
// best-effort: processes that vanish between listing and reading are skipped.
package procstat

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a memory sample in kilobytes.
type Usage struct {
	RSSKB int64
	VMSKB int64
}

// Sampler samples a process tree and remembers the peak.
type Sampler struct {
	pid int32

	mu   sync.Mutex
	peak Usage
	last Usage
}

// NewSampler creates a sampler rooted at pid.
func NewSampler(pid int) *Sampler {
	return &Sampler{pid: int32(pid)}
}

// Sample reads the current usage of the tree and updates the peak.
func (s *Sampler) Sample(ctx context.Context) (Usage, error) {
	root, err := process.NewProcessWithContext(ctx, s.pid)
	if err != nil {
		return Usage{}, fmt.Errorf("process %d: %w", s.pid, err)
	}

	var total Usage

	for _, p := range collectTree(ctx, root) {
		memInfo, err := p.MemoryInfoWithContext(ctx)
		if err != nil {
			// May fail for short-lived processes
			continue
		}

		total.RSSKB += int64(memInfo.RSS / 1024)
		total.VMSKB += int64(memInfo.VMS / 1024)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = total
	s.peak.RSSKB = max(s.peak.RSSKB, total.RSSKB)
	s.peak.VMSKB = max(s.peak.VMSKB, total.VMSKB)

	return total, nil
}

// Peak returns the largest values seen so far.
func (s *Sampler) Peak() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.peak
}

// Last returns the most recent sample.
func (s *Sampler) Last() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

// collectTree returns root and all of its descendants.
func collectTree(ctx context.Context, root *process.Process) []*process.Process {
	tree := []*process.Process{root}

	for i := 0; i < len(tree); i++ {
		children, err := tree[i].ChildrenWithContext(ctx)
		if err != nil {
			continue
		}

		tree = append(tree, children...)
	}

	return tree
}
