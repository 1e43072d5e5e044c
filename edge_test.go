package spots

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type edgeRecorder struct {
	reqs []*EdgeRequest
}

func (r *edgeRecorder) handle(req *EdgeRequest) { r.reqs = append(r.reqs, req) }

func newEdgeController(t *testing.T, opts ...ControllerOption) (*Controller, *edgeRecorder, *edgeRecorder) {
	t.Helper()
	end, refresh := &edgeRecorder{}, &edgeRecorder{}
	opts = append([]ControllerOption{OnReachEnd(end.handle), OnRefresh(refresh.handle)}, opts...)
	ctl := NewController(fixedRegistry(), testConfig(), opts...)
	ctl.Resize(100, 100, nil)
	titles := make([]string, 10)
	for i := range titles {
		titles[i] = string(rune('a' + i))
	}
	ctl.SetComponents([]Component{
		NewComponent("row", "", titled(titles[:5]...)...),
		NewComponent("row", "", titled(titles[5:]...)...),
	}, nil)
	return ctl, end, refresh
}

func TestReachEnd(t *testing.T) {
	ctl, end, refresh := newEdgeController(t)

	if ctl.Scroll(50); len(end.reqs) != 0 {
		t.Fatal("end signalled before reaching the bottom")
	}
	if off := ctl.Scroll(100); off != 100 {
		t.Fatalf("offset = %g, want 100", off)
	}
	if len(end.reqs) != 1 {
		t.Fatalf("end requests = %d, want 1", len(end.reqs))
	}
	req := end.reqs[0]
	if req.Edge != EdgeEnd || req.Component() != 1 {
		t.Errorf("request edge=%v component=%d", req.Edge, req.Component())
	}

	ctl.ScrollBy(-10)
	ctl.ScrollBy(10)
	if len(end.reqs) != 1 {
		t.Errorf("end signalled again while in flight: %d requests", len(end.reqs))
	}
	if got, ok := ctl.InFlight(EdgeEnd); !ok || got != req {
		t.Error("request not in flight")
	}

	var completed bool
	if err := req.Complete(titled("k", "l"), func(err error) { completed = err == nil }); err != nil {
		t.Fatal(err)
	}
	if !completed {
		t.Error("completion not called")
	}
	if _, ok := ctl.InFlight(EdgeEnd); ok {
		t.Error("in-flight flag not cleared")
	}
	c := mustComponent(t, ctl, 1)
	if got := titlesOf(c); !reflect.DeepEqual(got, []string{"f", "g", "h", "i", "j", "k", "l"}) {
		t.Errorf("items = %v", got)
	}
	if ctl.Composer().MaxOffset() != 140 {
		t.Errorf("max offset = %g, want 140", ctl.Composer().MaxOffset())
	}
	if err := req.Complete(titled("m"), nil); !errors.Is(err, ErrRequestDone) {
		t.Errorf("second complete err = %v, want ErrRequestDone", err)
	}

	ctl.Scroll(140)
	if len(end.reqs) != 2 {
		t.Errorf("end requests = %d, want 2 after the flag cleared", len(end.reqs))
	}
	if len(refresh.reqs) != 0 {
		t.Errorf("refresh signalled %d times", len(refresh.reqs))
	}
}

func TestRefresh(t *testing.T) {
	ctl, end, refresh := newEdgeController(t)

	if off := ctl.Scroll(-30); off != -30 || len(refresh.reqs) != 0 {
		t.Fatalf("offset %g, %d refresh requests below the threshold", off, len(refresh.reqs))
	}
	if off := ctl.Scroll(-80); off != -50 {
		t.Errorf("offset = %g, want bounce limit -50", off)
	}
	if len(refresh.reqs) != 1 {
		t.Fatalf("refresh requests = %d, want 1", len(refresh.reqs))
	}
	req := refresh.reqs[0]
	if req.Edge != EdgeBeginning || req.Component() != 0 {
		t.Errorf("request edge=%v component=%d", req.Edge, req.Component())
	}

	if err := req.Complete(titled("new"), nil); err != nil {
		t.Fatal(err)
	}
	if got := titlesOf(mustComponent(t, ctl, 0)); got[0] != "new" || len(got) != 6 {
		t.Errorf("items = %v, want new prepended", got)
	}
	if len(end.reqs) != 0 {
		t.Errorf("end signalled %d times", len(end.reqs))
	}
}

func TestEdgeRequestCancelledByRemoval(t *testing.T) {
	ctl, end, _ := newEdgeController(t)
	ctl.Scroll(100)
	req := end.reqs[0]

	ctl.RemoveComponent(1, nil)
	if req.Context().Err() == nil {
		t.Error("context not cancelled")
	}
	if req.Component() != -1 {
		t.Errorf("component = %d, want -1", req.Component())
	}
	if _, ok := ctl.InFlight(EdgeEnd); ok {
		t.Error("in-flight flag not cleared")
	}
	called := false
	if err := req.Complete(titled("x"), func(error) { called = true }); !errors.Is(err, ErrRequestDone) {
		t.Errorf("err = %v, want ErrRequestDone", err)
	}
	if called {
		t.Error("completion called for a stale request")
	}
	if ctl.Len() != 1 || mustComponent(t, ctl, 0).Len() != 5 {
		t.Error("stale request changed the components")
	}
}

func TestEdgeRequestCancel(t *testing.T) {
	ctl, end, _ := newEdgeController(t)
	ctl.Scroll(100)
	end.reqs[0].Cancel()
	if _, ok := ctl.InFlight(EdgeEnd); ok {
		t.Fatal("cancel left the flag set")
	}
	ctl.Scroll(100)
	if len(end.reqs) != 2 {
		t.Errorf("end requests = %d, want 2", len(end.reqs))
	}
}

func TestControllerClose(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctl, end, _ := newEdgeController(t, WithContext(parent))

	ctl.Scroll(100)
	first := end.reqs[0]
	ctl.Close()
	if first.Context().Err() == nil {
		t.Error("close did not cancel the request")
	}

	ctl.Scroll(100)
	if len(end.reqs) != 2 {
		t.Fatalf("end requests = %d, want 2", len(end.reqs))
	}
	second := end.reqs[1]
	if second.Context().Err() != nil {
		t.Error("request after close starts cancelled")
	}
	cancel()
	if second.Context().Err() == nil {
		t.Error("parent cancellation not propagated")
	}
}

func TestEdgeRequestParentCancelled(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctl, end, _ := newEdgeController(t, WithContext(parent))
	ctl.Scroll(100)
	req := end.reqs[0]

	cancel()
	if err := req.Complete(titled("x"), nil); !errors.Is(err, ErrRequestDone) || !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want ErrRequestDone wrapping context.Canceled", err)
	}
	if _, ok := ctl.InFlight(EdgeEnd); ok {
		t.Error("in-flight flag left set after the parent was cancelled")
	}
	if n := mustComponent(t, ctl, 1).Len(); n != 5 {
		t.Errorf("items = %d, want 5", n)
	}
}
