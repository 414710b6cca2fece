package vapi

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fandial/callboard/internal/cache"
	"github.com/fandial/callboard/internal/config"
	"github.com/fandial/callboard/internal/types"
	"github.com/rs/zerolog"
)

// fakeAPI replays a scripted sequence of call states
type fakeAPI struct {
	mu       sync.Mutex
	statuses []Call
	i        int
	ended    []string
}

func (f *fakeAPI) CreateCall(ctx context.Context, assistantID, phoneNumber string) (*Call, error) {
	return &Call{ID: "call-1", Status: types.CallInitiated}, nil
}

func (f *fakeAPI) GetCall(ctx context.Context, callID string) (*Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := f.statuses[f.i]
	if f.i < len(f.statuses)-1 {
		f.i++
	}
	return &call, nil
}

func (f *fakeAPI) EndCall(ctx context.Context, callID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = append(f.ended, callID)
	return nil
}

func testCreds() config.VapiCredentials {
	return config.VapiCredentials{
		APIKey:      "key",
		AssistantID: "asst-1",
		PhoneNumber: "+15551234567",
	}
}

func newTestSession(api CallAPI, creds config.VapiCredentials) (*Session, *cache.CallLog) {
	log := cache.NewCallLog()
	logger := zerolog.New(&bytes.Buffer{})
	return NewSession(api, creds, 5*time.Millisecond, log, logger), log
}

func TestOpenValidatesCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds config.VapiCredentials
		want  string
	}{
		{
			name:  "missing api key",
			creds: config.VapiCredentials{AssistantID: "a", PhoneNumber: "+1555"},
			want:  "missing apiKey",
		},
		{
			name:  "missing assistant id",
			creds: config.VapiCredentials{APIKey: "k", PhoneNumber: "+1555"},
			want:  "missing assistantId",
		},
		{
			name:  "missing phone number",
			creds: config.VapiCredentials{APIKey: "k", AssistantID: "a"},
			want:  "missing phoneNumber",
		},
		{
			name:  "everything missing",
			creds: config.VapiCredentials{},
			want:  "missing apiKey, assistantId, phoneNumber",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, _ := newTestSession(&fakeAPI{}, tt.creds)

			result := session.Open(context.Background(), "")
			if result.Success {
				t.Fatal("expected structured failure")
			}
			if result.Error != tt.want {
				t.Errorf("expected error %q, got %q", tt.want, result.Error)
			}
		})
	}
}

func TestOpenPhoneOverrideSatisfiesValidation(t *testing.T) {
	creds := testCreds()
	creds.PhoneNumber = ""
	api := &fakeAPI{statuses: []Call{{ID: "call-1", Status: types.CallRinging}}}
	session, _ := newTestSession(api, creds)
	defer session.Close()

	result := session.Open(context.Background(), "+15559876543")
	if !result.Success {
		t.Fatalf("expected success with phone override, got %+v", result)
	}
}

func TestOpenIsExclusive(t *testing.T) {
	api := &fakeAPI{statuses: []Call{{ID: "call-1", Status: types.CallAnswered}}}
	session, _ := newTestSession(api, testCreds())
	defer session.Close()

	first := session.Open(context.Background(), "")
	if !first.Success {
		t.Fatalf("expected first open to succeed: %+v", first)
	}

	second := session.Open(context.Background(), "")
	if second.Success {
		t.Fatal("expected second open to fail while a call is active")
	}
	if !strings.Contains(second.Error, "already in progress") {
		t.Errorf("unexpected error: %s", second.Error)
	}
}

func TestMonitorRecordsSuccessfulCall(t *testing.T) {
	api := &fakeAPI{statuses: []Call{
		{ID: "call-1", Status: types.CallRinging},
		{ID: "call-1", Status: types.CallAnswered, Transcript: "great, here you go"},
		{ID: "call-1", Status: types.CallAnswered, Transcript: "buy at https://tickets.example.com/giants"},
		{ID: "call-1", Status: types.CallEnded, Transcript: "buy at https://tickets.example.com/giants"},
	}}
	session, log := newTestSession(api, testCreds())

	var mu sync.Mutex
	var seen []types.CallState
	session.OnStatus(func(_ string, state types.CallState) {
		mu.Lock()
		seen = append(seen, state)
		mu.Unlock()
	})

	result := session.Open(context.Background(), "")
	if !result.Success {
		t.Fatalf("expected open to succeed: %+v", result)
	}

	// Wait for the monitor to observe the terminal state
	deadline := time.Now().Add(time.Second)
	for log.Size() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("call never finished")
		}
		time.Sleep(5 * time.Millisecond)
	}

	records := log.Recent(1)
	if records[0].Outcome != types.OutcomeSuccess {
		t.Errorf("expected success outcome, got %s", records[0].Outcome)
	}
	if !records[0].LinkSent {
		t.Error("expected linkSent to be true")
	}
	if records[0].Revenue != 25 {
		t.Errorf("expected revenue 25, got %f", records[0].Revenue)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []types.CallState{types.CallRinging, types.CallAnswered, types.CallEnded}
	if len(seen) != len(want) {
		t.Fatalf("expected %d status changes, got %d: %v", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("status %d: expected %s, got %s", i, want[i], seen[i])
		}
	}

	if _, _, ok := session.ActiveCall(); ok {
		t.Error("expected no active call after the monitor finished")
	}
}

func TestCallWithoutLinkIsNotASale(t *testing.T) {
	api := &fakeAPI{statuses: []Call{
		{ID: "call-1", Status: types.CallAnswered, Transcript: "not interested, thanks"},
		{ID: "call-1", Status: types.CallEnded, Transcript: "not interested, thanks"},
	}}
	session, log := newTestSession(api, testCreds())

	if result := session.Open(context.Background(), ""); !result.Success {
		t.Fatalf("expected open to succeed: %+v", result)
	}

	deadline := time.Now().Add(time.Second)
	for log.Size() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("call never finished")
		}
		time.Sleep(5 * time.Millisecond)
	}

	records := log.Recent(1)
	if records[0].Outcome != types.OutcomeRejected {
		t.Errorf("expected rejected outcome, got %s", records[0].Outcome)
	}
	if records[0].Revenue != 0 {
		t.Errorf("expected no revenue, got %f", records[0].Revenue)
	}
}

func TestCloseEndsActiveCall(t *testing.T) {
	api := &fakeAPI{statuses: []Call{{ID: "call-1", Status: types.CallAnswered}}}
	session, log := newTestSession(api, testCreds())

	if result := session.Open(context.Background(), ""); !result.Success {
		t.Fatal("expected open to succeed")
	}

	session.Close()

	api.mu.Lock()
	ended := len(api.ended)
	api.mu.Unlock()
	if ended != 1 {
		t.Errorf("expected one hangup request, got %d", ended)
	}
	if _, _, ok := session.ActiveCall(); ok {
		t.Error("expected no active call after close")
	}
	if log.Size() != 1 {
		t.Errorf("expected one call record, got %d", log.Size())
	}

	// Closing again is a no-op
	session.Close()
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.ended) != 1 {
		t.Errorf("expected close to be idempotent, got %d hangups", len(api.ended))
	}
}
