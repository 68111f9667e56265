package registry

import (
	"sync"
	"testing"

	"boardcore-go/errcode"
)

type pin struct{ level bool }

func (p *pin) Set(v bool) { p.level = v }
func (p *pin) Get() bool  { return p.level }
func (p *pin) Toggle()    { p.level = !p.level }

func TestCellPublishOnce(t *testing.T) {
	c := NewCell[int]("counter")
	if c.Borrow() != nil {
		t.Fatal("borrow before publish should be nil")
	}
	a, b := 1, 2
	if err := c.Publish(&a); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	err := c.Publish(&b)
	if errcode.Of(err) != errcode.AlreadyPublished {
		t.Fatalf("second publish: %v", err)
	}
	if got := c.Borrow(); got != &a {
		t.Fatal("borrow returned the wrong handle")
	}
	if errcode.Of(c.Publish(nil)) != errcode.InvalidParams {
		t.Fatal("nil publish accepted")
	}
}

func TestConcurrentPublishHasOneWinner(t *testing.T) {
	c := NewCell[int]("x")
	vals := make([]int, 16)
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := range vals {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if c.Publish(&vals[i]) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins=%d want 1", wins)
	}
}

func TestMustBorrowBeforePublishPanics(t *testing.T) {
	c := NewCell[int]("late")
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || errcode.Of(err) != errcode.HALNotReady {
			t.Fatalf("recovered %v", r)
		}
	}()
	c.MustBorrow()
}

func TestTakeSingleOwner(t *testing.T) {
	c := NewCell[int]("led_green")
	if _, err := c.Take(); errcode.Of(err) != errcode.HALNotReady {
		t.Fatalf("take before publish: %v", err)
	}
	v := 7
	_ = c.Publish(&v)
	h, err := c.Take()
	if err != nil || *h != 7 {
		t.Fatalf("first take: %v %v", h, err)
	}
	if _, err := c.Take(); errcode.Of(err) != errcode.InUse {
		t.Fatalf("second take: %v", err)
	}
	if !c.Taken() {
		t.Fatal("Taken()=false")
	}
}

func TestGuardedSerialisesAccess(t *testing.T) {
	n := 0
	g := NewGuarded(&n)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.With(func(p *int) { *p++ })
		}()
	}
	wg.Wait()
	if n != 50 {
		t.Fatalf("n=%d", n)
	}
}

func TestPeripheralsPublishAll(t *testing.T) {
	p := NewPeripherals()
	blue, green := &pin{}, &pin{}
	if err := p.PublishAll(blue, green, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	(*p.LEDBlue.Borrow()).Set(true)
	if !blue.level {
		t.Fatal("borrowed handle not wired to the pin")
	}
	if err := p.PublishAll(blue, green, nil); errcode.Of(err) != errcode.AlreadyPublished {
		t.Fatalf("republish: %v", err)
	}
}
