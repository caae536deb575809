package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ritahmida/boutique/pkg/event"
)

func TestFireReachesEveryListener(t *testing.T) {
	defer event.Flush()

	var got []interface{}
	event.Listen("order.created", func(p interface{}) { got = append(got, p) })
	event.Listen("order.created", func(p interface{}) { got = append(got, p) })

	event.Fire("order.created", 42)

	assert.Equal(t, []interface{}{42, 42}, got)
}

func TestFireUnknownEventIsNoop(t *testing.T) {
	defer event.Flush()
	event.Fire("no.listeners", nil)
}

func TestFireAsync(t *testing.T) {
	defer event.Flush()

	var wg sync.WaitGroup
	wg.Add(2)
	event.Listen("stock.low", func(p interface{}) { wg.Done() })
	event.Listen("stock.low", func(p interface{}) { wg.Done() })

	event.FireAsync("stock.low", "M/noir")
	wg.Wait()
}
