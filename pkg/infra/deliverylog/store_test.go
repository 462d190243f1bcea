package deliverylog_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
	"github.com/m-mizutani/gakoci/pkg/infra/deliverylog"
)

func entry(event, payload string) *model.DeliveryLogEntry {
	return &model.DeliveryLogEntry{
		ID:         event + "-" + payload,
		Event:      event,
		Kind:       model.ParseEventKind(event),
		ReceivedAt: time.Now(),
		Payload:    []byte(payload),
	}
}

func TestStore_AppendAndRead(t *testing.T) {
	store := deliverylog.New()
	gt.Value(t, store.LastPayload()).Nil()

	gt.NoError(t, store.Append(entry("ping", `{"zen":"ok"}`)))
	gt.NoError(t, store.Append(entry("push", `{"n":1}`)))
	gt.NoError(t, store.Append(entry("push", `{"n":2}`)))

	gt.Number(t, store.Count("ping")).Equal(1)
	gt.Number(t, store.Count("push")).Equal(2)
	gt.Number(t, store.Count("pull_request")).Equal(0)
	gt.Value(t, string(store.LastPayload())).Equal(`{"n":2}`)

	entries := store.Entries("push")
	gt.Number(t, len(entries)).Equal(2)
	gt.Value(t, string(entries[0].Payload)).Equal(`{"n":1}`)

	summary := store.Summary()
	gt.Value(t, summary.Counts).Equal(map[string]int{"ping": 1, "push": 2})
	gt.Value(t, summary.Last.Event).Equal("push")
}

func TestStore_EntriesIsACopy(t *testing.T) {
	store := deliverylog.New()
	gt.NoError(t, store.Append(entry("push", "a")))

	entries := store.Entries("push")
	entries[0] = nil
	gt.Value(t, store.Entries("push")[0]).NotNil()
}

func TestStore_Close(t *testing.T) {
	store := deliverylog.New()
	gt.NoError(t, store.Append(entry("push", "a")))
	gt.NoError(t, store.Close())

	err := store.Append(entry("push", "b"))
	gt.True(t, errors.Is(err, types.ErrStoreClosed))
	gt.Number(t, store.Count("push")).Equal(1)
}

func TestStore_Concurrent(t *testing.T) {
	store := deliverylog.New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(entry("push", fmt.Sprint(i)))
			_ = store.Summary()
		}()
	}
	wg.Wait()

	gt.Number(t, store.Count("push")).Equal(50)
}
