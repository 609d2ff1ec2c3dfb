// Package harness implements the engine test harness (C8): reusable
// property/scenario checks against the B-link tree engine (pkg/blink)
// and the chunk/directory layer (pkg/chunk, pkg/itbl), runnable both
// from *_test.go files and from the CLI's "verify" subcommand
// (cmd/clydefs).
//
// Grounded on the teacher's cmd/freyja/cmd/service.go pattern of a
// long-running operation reporting structured results plus breadcrumbs
// to Sentry on failure; generalized here from a single service-health
// check to a named battery of scenarios, each tagged with a
// github.com/segmentio/ksuid correlation id the way the teacher tags a
// service run.
package harness

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/segmentio/ksuid"

	"github.com/clydefs/clydefs/pkg/blink"
	"github.com/clydefs/clydefs/pkg/chunk"
	"github.com/clydefs/clydefs/pkg/clypool"
	"github.com/clydefs/clydefs/pkg/codec"
	"github.com/clydefs/clydefs/pkg/config"
	"github.com/clydefs/clydefs/pkg/itbl"
	"github.com/clydefs/clydefs/pkg/treeiface"
)

// Result is the outcome of one scenario run.
type Result struct {
	ID       ksuid.KSUID
	Name     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the scenario completed without error.
func (r Result) Passed() bool { return r.Err == nil }

// Scenario is one named, self-contained check. Scenarios build their
// own engine state from scratch so they can run independently and in
// parallel.
type Scenario struct {
	Name string
	Run  func() error
}

// Scenarios is every concrete scenario spec.md §8 names, in the order
// they appear there.
var Scenarios = []Scenario{
	{"insert-in-order-to-split", InsertInOrderToSplit},
	{"insert-out-of-order", InsertOutOfOrder},
	{"concurrent-insert-split", ConcurrentInsertSplit},
	{"remove-shift", RemoveShift},
	{"chunk-insert-delete-reinsert", ChunkInsertDeleteReinsert},
	{"directory-overflow", DirectoryOverflow},
}

// RunAll runs every scenario in Scenarios, each tagged with a fresh
// ksuid correlation id. A scenario's failure is reported to Sentry as
// a message tagged with the scenario name and run id but does not
// stop the remaining
// scenarios from running.
func RunAll() []Result {
	results := make([]Result, len(Scenarios))
	for i, s := range Scenarios {
		results[i] = run(s)
	}
	return results
}

func run(s Scenario) Result {
	id := ksuid.New()
	start := time.Now()
	err := s.Run()
	r := Result{ID: id, Name: s.Name, Err: err, Duration: time.Since(start)}
	if err != nil {
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("component", "clydefs-harness")
			scope.SetTag("scenario", s.Name)
			scope.SetTag("run_id", id.String())
			sentry.CaptureMessage(fmt.Sprintf("scenario %s failed: %v", s.Name, err))
		})
	}
	return r
}

// InsertInOrderToSplit reproduces spec.md §8 scenario 1.
func InsertInOrderToSplit() error {
	tree, err := blink.Create(2)
	if err != nil {
		return err
	}
	for i := uint64(1); i <= 5; i++ {
		if err := tree.Insert(i, i*100); err != nil {
			return fmt.Errorf("insert(%d): %w", i, err)
		}
	}
	keys, err := tree.InOrderKeys()
	if err != nil {
		return err
	}
	return assertKeys("insert-in-order-to-split", keys, []uint64{1, 2, 3, 4, 5})
}

// InsertOutOfOrder reproduces spec.md §8 scenario 2.
func InsertOutOfOrder() error {
	tree, err := blink.Create(2)
	if err != nil {
		return err
	}
	for _, k := range []uint64{3, 1, 4, 2, 5} {
		if err := tree.Insert(k, k); err != nil {
			return fmt.Errorf("insert(%d): %w", k, err)
		}
	}
	keys, err := tree.InOrderKeys()
	if err != nil {
		return err
	}
	return assertKeys("insert-out-of-order", keys, []uint64{1, 2, 3, 4, 5})
}

// ConcurrentInsertSplit reproduces spec.md §8 scenario 3.
func ConcurrentInsertSplit() error {
	tree, err := blink.Create(2)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= 999; i += 2 {
			if err := tree.Insert(i, i); err != nil {
				errs <- err
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := uint64(2); i <= 1000; i += 2 {
			if err := tree.Insert(i, i); err != nil {
				errs <- err
				return
			}
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}

	keys, err := tree.InOrderKeys()
	if err != nil {
		return err
	}
	want := make([]uint64, 1000)
	for i := range want {
		want[i] = uint64(i + 1)
	}
	return assertKeys("concurrent-insert-split", keys, want)
}

// RemoveShift reproduces spec.md §8 scenario 4.
func RemoveShift() error {
	tree, err := blink.Create(2)
	if err != nil {
		return err
	}
	for _, k := range []uint64{3, 1, 2, 7, 5, 6, 8, 4} {
		if err := tree.Insert(k, k); err != nil {
			return fmt.Errorf("insert(%d): %w", k, err)
		}
	}
	for _, k := range []uint64{8, 4, 2} {
		if err := tree.Remove(k); err != nil {
			return fmt.Errorf("remove(%d): %w", k, err)
		}
	}
	keys, err := tree.InOrderKeys()
	if err != nil {
		return err
	}
	return assertKeys("remove-shift", keys, []uint64{1, 3, 5, 6, 7})
}

// ChunkInsertDeleteReinsert reproduces spec.md §8 scenario 5.
func ChunkInsertDeleteReinsert() error {
	c := chunk.New()
	names := []string{"a", "b", "c"}
	slots := map[string]uint8{}
	for _, n := range names {
		e := &codec.Entry{Ino: 1}
		if err := e.SetName(n); err != nil {
			return err
		}
		slot, err := c.EntryInsert(e)
		if err != nil {
			return err
		}
		slots[n] = slot
	}
	c.Sort()

	c.EntryDelete(slots["b"])
	c.Sort()

	d := &codec.Entry{Ino: 2}
	if err := d.SetName("d"); err != nil {
		return err
	}
	if _, err := c.EntryInsert(d); err != nil {
		return err
	}
	c.Sort()

	used := int(config.N) - int(c.Header.EntriesFree)
	var got []string
	for i := 0; i < used; i++ {
		got = append(got, c.Entries[c.Header.OffList[i]].NameString())
	}
	want := []string{"a", "c", "d"}
	mismatch := len(got) != len(want)
	if !mismatch {
		for i := range want {
			if got[i] != want[i] {
				mismatch = true
				break
			}
		}
	}
	if mismatch {
		return fmt.Errorf("chunk-insert-delete-reinsert: got %v, want %v\n%s", got, want, c.DebugString())
	}
	return nil
}

// DirectoryOverflow reproduces spec.md §8 scenario 6.
func DirectoryOverflow() error {
	tree := treeiface.NewMemoryTreeWithCapacity(clypool.NewPayloadPool(1<<20, 16))
	tid, err := tree.TreeCreate(config.K)
	if err != nil {
		return err
	}
	dir, err := itbl.Create(tree, tid)
	if err != nil {
		return err
	}

	total := int(config.N) + 1
	for i := 0; i < total; i++ {
		e := &codec.Entry{Ino: uint64(i + 1)}
		if err := e.SetName(fmt.Sprintf("file-%04d", i)); err != nil {
			return err
		}
		if _, err := dir.Insert(e); err != nil {
			return fmt.Errorf("insert %d: %w", i, err)
		}
	}

	last := fmt.Sprintf("file-%04d", total-1)
	_, loc, err := dir.Find(last)
	if err != nil {
		return err
	}
	if loc.ChunkOff != itbl.Stride() {
		return fmt.Errorf("directory-overflow: expected %q in the second chunk, found at offset %d", last, loc.ChunkOff)
	}
	return nil
}

func assertKeys(scenario string, got, want []uint64) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s: got %d keys %v, want %d %v", scenario, len(got), got, len(want), want)
	}
	sorted := append([]uint64(nil), got...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i := range want {
		if sorted[i] != want[i] {
			return fmt.Errorf("%s: got %v, want %v", scenario, got, want)
		}
	}
	for i := range got {
		if got[i] != sorted[i] {
			return fmt.Errorf("%s: traversal order %v is not ascending", scenario, got)
		}
	}
	return nil
}
