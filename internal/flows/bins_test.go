package flows_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"wms/internal/api"
	"wms/internal/flows"
	"wms/internal/models"
)

func TestBinListFetch(t *testing.T) {
	bins := []models.Bin{
		{ID: 2, Status: 85, LastUpdated: "2024-03-01T10:00:00"},
		{ID: 1, Status: 10, LastUpdated: "2024-03-01T09:00:00"},
	}
	fake := &fakeAPI{bins: bins}
	f := flows.NewBinListFlow(fake, nil)

	first := <-f.Fetch(context.Background())
	if first.Phase != flows.PhaseLoaded || !reflect.DeepEqual(first.Value, bins) {
		t.Fatalf("first fetch = %+v", first)
	}

	// Fetching again with no server change yields the same list.
	second := <-f.Fetch(context.Background())
	if !reflect.DeepEqual(second, first) {
		t.Fatalf("second fetch = %+v", second)
	}
	if got := f.State().Get(); !reflect.DeepEqual(got, second) {
		t.Fatalf("published = %+v", got)
	}
}

func TestBinListEmptyIsLoaded(t *testing.T) {
	f := flows.NewBinListFlow(&fakeAPI{bins: []models.Bin{}}, nil)
	st := <-f.Fetch(context.Background())
	if st.Phase != flows.PhaseLoaded || len(st.Value) != 0 || st.Message != "" {
		t.Fatalf("state = %+v", st)
	}
}

func TestBinFillBoundsAreLoaded(t *testing.T) {
	bins := []models.Bin{
		{ID: 1, Status: 0, LastUpdated: "2024-03-01T09:00:00"},
		{ID: 2, Status: 100, LastUpdated: "2024-03-01T10:00:00"},
	}
	list := <-flows.NewBinListFlow(&fakeAPI{bins: bins}, nil).Fetch(context.Background())
	if list.Phase != flows.PhaseLoaded || !reflect.DeepEqual(list.Value, bins) {
		t.Fatalf("list = %+v", list)
	}

	fake := &fakeAPI{bin: func(id int64) (models.BinDetails, error) {
		return models.BinDetails{ID: id, Status: int(id-1) * 100}, nil
	}}
	details := flows.NewBinDetailsFlow(fake, nil)
	for id, want := range map[int64]int{1: 0, 2: 100} {
		st := <-details.Fetch(context.Background(), id)
		if st.Phase != flows.PhaseLoaded || st.Value.ID != id || st.Value.Status != want {
			t.Errorf("bin %d = %+v, want status %d", id, st, want)
		}
	}
}

func TestBinListFailures(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&api.HTTPError{StatusCode: 500}, "Request failed: 500"},
		{errors.New("connection reset"), "Error: connection reset"},
	}
	for _, tc := range cases {
		f := flows.NewBinListFlow(&fakeAPI{binsErr: tc.err}, nil)
		st := <-f.Fetch(context.Background())
		if st.Phase != flows.PhaseFailed || st.Message != tc.want || st.Value != nil {
			t.Errorf("state = %+v, want message %q", st, tc.want)
		}
	}
}

func TestBinDetailsSupersededResponseIsDropped(t *testing.T) {
	release := make(chan struct{})
	fake := &fakeAPI{bin: func(id int64) (models.BinDetails, error) {
		if id == 1 {
			<-release
		}
		return models.BinDetails{ID: id, Status: int(id) * 10}, nil
	}}
	f := flows.NewBinDetailsFlow(fake, nil)

	slow := f.Fetch(context.Background(), 1)
	fast := <-f.Fetch(context.Background(), 2)
	if fast.Value.ID != 2 {
		t.Fatalf("fast = %+v", fast)
	}

	close(release)
	stale := <-slow
	if stale.Phase != flows.PhaseLoaded || stale.Value.ID != 1 {
		t.Fatalf("caller of the stale fetch got %+v", stale)
	}
	if got := f.State().Get(); got.Value.ID != 2 {
		t.Fatalf("published %+v, want bin 2", got)
	}
}

func TestObservableConflates(t *testing.T) {
	o := flows.NewObservable(0)
	ch, cancel := o.Subscribe()
	defer cancel()

	if v := <-ch; v != 0 {
		t.Fatalf("initial = %d", v)
	}
	for i := 1; i <= 5; i++ {
		o.Set(i)
	}
	if v := <-ch; v != 5 {
		t.Fatalf("latest = %d, want 5", v)
	}

	cancel()
	if _, open := <-ch; open {
		t.Fatal("channel open after cancel")
	}
	o.Set(6) // no subscriber left
}
