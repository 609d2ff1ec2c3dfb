package harness

import "testing"

func TestScenariosPass(t *testing.T) {
	for _, s := range Scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			if err := s.Run(); err != nil {
				t.Fatalf("%s: %v", s.Name, err)
			}
		})
	}
}

func TestRunAllTagsEveryResult(t *testing.T) {
	results := RunAll()
	if len(results) != len(Scenarios) {
		t.Fatalf("got %d results, want %d", len(results), len(Scenarios))
	}
	seen := map[string]bool{}
	for _, r := range results {
		if !r.Passed() {
			t.Fatalf("scenario %s failed: %v", r.Name, r.Err)
		}
		if r.ID.IsNil() {
			t.Fatalf("scenario %s got a nil correlation id", r.Name)
		}
		seen[r.ID.String()] = true
	}
	if len(seen) != len(results) {
		t.Fatal("expected every scenario run to get a distinct correlation id")
	}
}
