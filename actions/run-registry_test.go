package actions

import (
	"testing"
)

func TestRunRegistryOrderAndOutcomes(t *testing.T) {
	r := NewRunRegistry()
	id1 := r.Add("filter")
	id2 := r.Add("export")
	if id1 == id2 {
		t.Fatal("run ids must be unique")
	}
	runs := r.List()
	if len(runs) != 2 || runs[0].ID != id1 || runs[1].ID != id2 {
		t.Fatalf("expected runs listed in launch order, got %+v", runs)
	}
	if runs[0].Status != RunStatusRunning {
		t.Fatalf("a new run must be running, got %v", runs[0].Status)
	}
	r.Complete(id1, &FilterResult{RecordsOut: 3})
	r.Fail(id2, "boom", nil)
	run1, ok := r.Get(id1)
	if !ok || run1.Status != RunStatusCompleted {
		t.Fatalf("expected completed run, got %+v", run1)
	}
	if res, ok := run1.Result.(*FilterResult); !ok || res.RecordsOut != 3 {
		t.Fatalf("expected the result attached, got %+v", run1.Result)
	}
	run2, _ := r.Get(id2)
	if run2.Status != RunStatusFailed || run2.Message != "boom" {
		t.Fatalf("expected failed run with message, got %+v", run2)
	}
}

func TestRunRegistryUnknownRun(t *testing.T) {
	r := NewRunRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Fatal("expected lookup of an unknown run to miss")
	}
	r.Complete("nope", nil) // must not panic.
}
