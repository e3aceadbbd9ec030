package telemetry

import (
	"sync"
	"testing"
)

func TestTable_PublishAndRead(t *testing.T) {
	tbl := NewTable()

	if got := tbl.Number("missing", -9.5); got != -9.5 {
		t.Errorf("Number(missing) = %v, want default", got)
	}
	if _, ok := tbl.Lookup("missing"); ok {
		t.Error("Lookup(missing) should report unset")
	}

	tbl.Publish("b", 2)
	tbl.Publish("a", 1)
	tbl.Publish("b", 3)

	if got := tbl.Number("b", 0); got != 3 {
		t.Errorf("Number(b) = %v, want 3", got)
	}
	keys := tbl.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestTable_SetDefault(t *testing.T) {
	tbl := NewTable()

	tbl.SetDefault(ShooterTopSetpoint, -9.5)
	if got := tbl.Number(ShooterTopSetpoint, 0); got != -9.5 {
		t.Errorf("after SetDefault: %v", got)
	}

	tbl.Publish(ShooterTopSetpoint, -12)
	tbl.SetDefault(ShooterTopSetpoint, -9.5)
	if got := tbl.Number(ShooterTopSetpoint, 0); got != -12 {
		t.Errorf("SetDefault overwrote operator value: %v", got)
	}
}

func TestTable_Subscribe(t *testing.T) {
	tbl := NewTable()
	ch := tbl.Subscribe(2)

	tbl.Publish("x", 1)
	tbl.Publish("y", 2)
	tbl.Publish("z", 3) // dropped, buffer full

	want := []Update{{"x", 1}, {"y", 2}}
	for _, w := range want {
		if got := <-ch; got != w {
			t.Errorf("got %+v, want %+v", got, w)
		}
	}
	select {
	case u := <-ch:
		t.Errorf("unexpected update %+v", u)
	default:
	}

	// SetDefault is not an update.
	tbl.SetDefault("w", 1)
	select {
	case u := <-ch:
		t.Errorf("unexpected update %+v", u)
	default:
	}
}

func TestTable_Concurrent(t *testing.T) {
	tbl := NewTable()
	tbl.Subscribe(1)
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tbl.Publish(ShooterTopVel, v)
				tbl.Number(ShooterTopVel, 0)
				tbl.Keys()
			}
		}(float64(i))
	}
	wg.Wait()

	if _, ok := tbl.Lookup(ShooterTopVel); !ok {
		t.Error("value missing after concurrent publish")
	}
}
