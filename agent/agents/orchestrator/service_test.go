package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	preferencex "github.com/rayadhanush/Dining-concierge-bot/agent/preference"
	queuex "github.com/rayadhanush/Dining-concierge-bot/agent/queue"
	slotx "github.com/rayadhanush/Dining-concierge-bot/agent/slot"
)

type cacheWrite struct {
	op        string
	sessionID string
	rec       preferencex.Record
}

type fakeCache struct {
	records  map[string]preferencex.Record
	writeErr error
	gets     int
	writes   []cacheWrite
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: map[string]preferencex.Record{}}
}

func (f *fakeCache) Get(ctx context.Context, sessionID string) (preferencex.Record, bool) {
	f.gets++
	rec, ok := f.records[sessionID]
	return rec, ok
}

func (f *fakeCache) Put(ctx context.Context, sessionID string, rec preferencex.Record) error {
	f.writes = append(f.writes, cacheWrite{op: "put", sessionID: sessionID, rec: rec})
	if f.writeErr != nil {
		return f.writeErr
	}
	f.records[sessionID] = rec
	return nil
}

func (f *fakeCache) Update(ctx context.Context, sessionID string, rec preferencex.Record) error {
	f.writes = append(f.writes, cacheWrite{op: "update", sessionID: sessionID, rec: rec})
	if f.writeErr != nil {
		return f.writeErr
	}
	f.records[sessionID] = rec
	return nil
}

type fakeSubmitter struct {
	err      error
	requests []contractx.FulfillmentRequest
	messages []queuex.Message
}

func (f *fakeSubmitter) Submit(ctx context.Context, req contractx.FulfillmentRequest) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	f.messages = append(f.messages, queuex.NewMessage(req))
	return nil
}

func newTestOrchestrator(t *testing.T, cache contractx.PreferenceCache, submitter contractx.Submitter) *Orchestrator {
	t.Helper()

	o, err := New(cache, submitter, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func diningRequest(sessionID string, slots slotx.Set) contractx.TurnRequest {
	return contractx.TurnRequest{
		SessionID: sessionID,
		SessionState: contractx.SessionState{
			SessionAttributes: map[string]string{"channel": "web"},
			Intent: contractx.Intent{
				Name:  contractx.IntentDiningSuggestions,
				Slots: slots,
			},
		},
	}
}

func manhattanSlots() slotx.Set {
	return slotx.Set{
		slotx.Location:       slotx.Interpreted("Manhattan"),
		slotx.CuisineType:    slotx.Interpreted("italian"),
		slotx.NumberOfPeople: slotx.Interpreted("4"),
		slotx.Date:           slotx.Interpreted("2025-12-01"),
		slotx.Time:           slotx.Interpreted("19:00"),
		slotx.Email:          slotx.Interpreted("a@b.com"),
	}
}

func cachedRecord() preferencex.Record {
	return preferencex.Record{
		Location:       "nyc",
		CuisineType:    "japanese",
		NumberOfPeople: "2",
		Date:           "2025-11-20",
		Time:           "18:30",
		Email:          "old@example.com",
	}
}

func TestNewRequiresSubmitter(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, nil, Config{}); err == nil {
		t.Fatal("expected error for nil submitter")
	}
}

func TestHandleTurnGreeting(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	o := newTestOrchestrator(t, newFakeCache(), submitter)

	resp, err := o.HandleTurn(context.Background(), contractx.TurnRequest{
		IntentName: contractx.IntentGreeting,
		SessionID:  "s1",
		SessionState: contractx.SessionState{
			SessionAttributes: map[string]string{"k": "v"},
		},
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.SessionState.DialogAction.Type != contractx.DialogActionClose {
		t.Fatalf("dialog action = %+v, want Close", resp.SessionState.DialogAction)
	}
	if resp.SessionState.Intent.State != contractx.IntentStateFulfilled {
		t.Fatalf("intent state = %q", resp.SessionState.Intent.State)
	}
	if got := resp.Contents(); len(got) != 1 || got[0] != "Hi there, how can I help you?" {
		t.Fatalf("messages = %v", got)
	}
	if resp.SessionState.SessionAttributes["k"] != "v" {
		t.Fatal("session attributes were not passed through")
	}
	if len(submitter.requests) != 0 {
		t.Fatal("greeting must not submit")
	}
}

func TestHandleTurnRejectsUnknownIntentAndMissingSession(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, newFakeCache(), &fakeSubmitter{})

	_, err := o.HandleTurn(context.Background(), contractx.TurnRequest{IntentName: "BookFlight", SessionID: "s1"})
	if !errors.Is(err, contractx.ErrUnsupportedIntent) {
		t.Fatalf("HandleTurn() error = %v, want ErrUnsupportedIntent", err)
	}

	_, err = o.HandleTurn(context.Background(), contractx.TurnRequest{IntentName: contractx.IntentGreeting})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("HandleTurn() error = %v, want ErrValidation", err)
	}
}

func TestHandleTurnElicitsAndClearsViolatedSlot(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	submitter := &fakeSubmitter{}
	o := newTestOrchestrator(t, cache, submitter)

	slots := manhattanSlots()
	slots[slotx.CuisineType] = slotx.Interpreted("klingon")

	resp, err := o.HandleTurn(context.Background(), diningRequest("s1", slots))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	action := resp.SessionState.DialogAction
	if action.Type != contractx.DialogActionElicitSlot || action.SlotToElicit != slotx.CuisineType {
		t.Fatalf("dialog action = %+v", action)
	}
	if !resp.SessionState.Intent.Slots.IsCleared(slotx.CuisineType) {
		t.Fatal("violated slot should be cleared in the response")
	}
	if v, _ := resp.SessionState.Intent.Slots.Get(slotx.Location); v != "Manhattan" {
		t.Fatalf("Location = %q, other slots must survive", v)
	}
	if got := resp.Contents()[0]; got != "We currently do not support 'klingon'. Can you try a different cuisine?" {
		t.Fatalf("prompt = %q", got)
	}
	if v, _ := slots.Get(slotx.CuisineType); v != "klingon" {
		t.Fatal("request slots must not be mutated")
	}
	if len(submitter.requests) != 0 || len(cache.writes) != 0 {
		t.Fatal("invalid turn must not submit or write")
	}
}

func TestHandleTurnFreshValidSetPutsAndSubmitsOnce(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	submitter := &fakeSubmitter{}
	o := newTestOrchestrator(t, cache, submitter)

	resp, err := o.HandleTurn(context.Background(), diningRequest("s1", manhattanSlots()))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.SessionState.DialogAction.Type != contractx.DialogActionClose ||
		resp.SessionState.Intent.State != contractx.IntentStateFulfilled {
		t.Fatalf("response = %+v, want Close/Fulfilled", resp.SessionState)
	}
	if got := resp.Contents()[0]; got != "Thanks, you're all set! You should receive suggestions soon." {
		t.Fatalf("message = %q", got)
	}

	if len(cache.writes) != 1 || cache.writes[0].op != "put" {
		t.Fatalf("cache writes = %+v, want single put", cache.writes)
	}
	if cache.writes[0].rec != preferencex.FromSlots(manhattanSlots()) {
		t.Fatalf("put record = %+v", cache.writes[0].rec)
	}

	if len(submitter.requests) != 1 {
		t.Fatalf("submissions = %d, want 1", len(submitter.requests))
	}
	want := contractx.FulfillmentRequest{
		Location:       "Manhattan",
		CuisineType:    "italian",
		NumberOfPeople: 4,
		Date:           "2025-12-01",
		Time:           "19:00",
		Email:          "a@b.com",
	}
	if submitter.requests[0] != want {
		t.Fatalf("submitted = %+v, want %+v", submitter.requests[0], want)
	}

	msg := submitter.messages[0]
	if msg.Body != "Reservation request for italian in Manhattan" {
		t.Fatalf("body = %q", msg.Body)
	}
	wantAttrs := map[string]string{
		"Location":       "Manhattan",
		"CuisineType":    "italian",
		"NumberOfPeople": "4",
		"Date":           "2025-12-01",
		"Time":           "19:00",
		"Email":          "a@b.com",
	}
	if len(msg.Attributes) != len(wantAttrs) {
		t.Fatalf("attributes = %+v", msg.Attributes)
	}
	for name, value := range wantAttrs {
		if msg.Attributes[name].StringValue != value {
			t.Fatalf("attribute %s = %q, want %q", name, msg.Attributes[name].StringValue, value)
		}
	}
	if msg.Attributes["NumberOfPeople"].DataType != queuex.DataTypeNumber {
		t.Fatalf("NumberOfPeople data type = %q", msg.Attributes["NumberOfPeople"].DataType)
	}
}

func TestHandleTurnOffersCachedSearchWhenLocationMissing(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.records["s1"] = cachedRecord()
	o := newTestOrchestrator(t, cache, &fakeSubmitter{})

	resp, err := o.HandleTurn(context.Background(), diningRequest("s1", slotx.Set{}))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.SessionState.DialogAction.SlotToElicit != slotx.Confirmation {
		t.Fatalf("slotToElicit = %q, want Confirmation", resp.SessionState.DialogAction.SlotToElicit)
	}
	prompt := resp.Contents()[0]
	for _, part := range []string{"japanese", "nyc", "2 people", "Thursday, Nov 20, 2025", "18:30"} {
		if !strings.Contains(prompt, part) {
			t.Fatalf("prompt %q missing %q", prompt, part)
		}
	}
}

func TestHandleTurnAsksLocationWithoutCachedSearch(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, newFakeCache(), &fakeSubmitter{})

	resp, err := o.HandleTurn(context.Background(), diningRequest("s1", slotx.Set{}))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.SessionState.DialogAction.SlotToElicit != slotx.Location {
		t.Fatalf("slotToElicit = %q, want Location", resp.SessionState.DialogAction.SlotToElicit)
	}
	if got := resp.Contents()[0]; got != "Where are you looking to eat?" {
		t.Fatalf("prompt = %q", got)
	}
}

func TestHandleTurnResumesCachedSearchOnYes(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.records["s1"] = cachedRecord()
	submitter := &fakeSubmitter{}
	o := newTestOrchestrator(t, cache, submitter)

	slots := slotx.Set{slotx.Confirmation: slotx.Interpreted("Yes")}
	resp, err := o.HandleTurn(context.Background(), diningRequest("s1", slots))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.SessionState.DialogAction.Type != contractx.DialogActionClose {
		t.Fatalf("dialog action = %+v, want Close", resp.SessionState.DialogAction)
	}
	if len(submitter.requests) != 1 {
		t.Fatalf("submissions = %d, want 1", len(submitter.requests))
	}
	got := submitter.requests[0]
	rec := cachedRecord()
	if got.Location != rec.Location || got.CuisineType != rec.CuisineType || got.PartySize() != rec.NumberOfPeople ||
		got.Date != rec.Date || got.Time != rec.Time || got.Email != rec.Email {
		t.Fatalf("submitted = %+v, want cached %+v", got, rec)
	}
	if len(cache.writes) != 0 {
		t.Fatalf("cache writes = %+v, resumed search must not write", cache.writes)
	}
}

func TestHandleTurnUpdatesCacheAfterDeclinedOffer(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.records["s1"] = cachedRecord()
	submitter := &fakeSubmitter{}
	o := newTestOrchestrator(t, cache, submitter)

	slots := manhattanSlots()
	slots[slotx.Confirmation] = slotx.Interpreted("no")
	if _, err := o.HandleTurn(context.Background(), diningRequest("s1", slots)); err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if len(cache.writes) != 1 || cache.writes[0].op != "update" {
		t.Fatalf("cache writes = %+v, want single update", cache.writes)
	}
	if cache.records["s1"].CuisineType != "italian" {
		t.Fatalf("cached cuisine = %q, want italian", cache.records["s1"].CuisineType)
	}
	if len(submitter.requests) != 1 {
		t.Fatalf("submissions = %d, want 1", len(submitter.requests))
	}
}

func TestHandleTurnDeclinedOfferAsksForLocation(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.records["s1"] = cachedRecord()
	o := newTestOrchestrator(t, cache, &fakeSubmitter{})

	slots := slotx.Set{slotx.Confirmation: slotx.Interpreted("no")}
	resp, err := o.HandleTurn(context.Background(), diningRequest("s1", slots))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.SessionState.DialogAction.SlotToElicit != slotx.Location {
		t.Fatalf("slotToElicit = %q, want Location", resp.SessionState.DialogAction.SlotToElicit)
	}
}

func TestHandleTurnToleratesCacheWriteFailure(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.writeErr = errors.New("redis down")
	submitter := &fakeSubmitter{}
	o := newTestOrchestrator(t, cache, submitter)

	resp, err := o.HandleTurn(context.Background(), diningRequest("s1", manhattanSlots()))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.SessionState.Intent.State != contractx.IntentStateFulfilled || len(submitter.requests) != 1 {
		t.Fatal("cache failure must not block the reservation")
	}
}

func TestHandleTurnPropagatesSubmitFailure(t *testing.T) {
	t.Parallel()

	queueErr := errors.New("queue unavailable")
	o := newTestOrchestrator(t, newFakeCache(), &fakeSubmitter{err: queueErr})

	_, err := o.HandleTurn(context.Background(), diningRequest("s1", manhattanSlots()))
	if !errors.Is(err, contractx.ErrSubmitFailed) {
		t.Fatalf("HandleTurn() error = %v, want ErrSubmitFailed", err)
	}
	if !errors.Is(err, queueErr) {
		t.Fatalf("HandleTurn() error = %v, want wrapped queue error", err)
	}
}

func TestHandleTurnWithoutCacheStillSubmits(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	o := newTestOrchestrator(t, nil, submitter)

	if _, err := o.HandleTurn(context.Background(), diningRequest("s1", manhattanSlots())); err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if len(submitter.requests) != 1 {
		t.Fatalf("submissions = %d, want 1", len(submitter.requests))
	}
}
