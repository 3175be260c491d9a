package events

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/testutil"
)

func receiveEvent(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case msg := <-client.send:
		return string(msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client did not receive message")
		return ""
	}
}

func TestBroadcaster_CreditTaken(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("ABC234")
	client := NewClient(hub, "identity-1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	broadcaster.CreditTaken("ABC234", 0, 3000, 3000, 300)

	msg := receiveEvent(t, client)
	if !strings.Contains(msg, "event: credit_taken") {
		t.Errorf("message does not contain event name: %s", msg)
	}

	// The data line carries the full event envelope as JSON
	dataLine := strings.TrimPrefix(strings.Split(msg, "\n")[1], "data: ")
	var event struct {
		Type     string `json:"type"`
		RoomCode string `json:"room_code"`
		Payload  struct {
			PlayerIndex         int `json:"player_index"`
			Amount              int `json:"amount"`
			TotalCredit         int `json:"total_credit"`
			TotalMonthlyPayment int `json:"total_monthly_payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal([]byte(dataLine), &event); err != nil {
		t.Fatalf("failed to parse event data: %v", err)
	}
	if event.RoomCode != "ABC234" {
		t.Errorf("room_code = %q, want ABC234", event.RoomCode)
	}
	if event.Payload.Amount != 3000 || event.Payload.TotalMonthlyPayment != 300 {
		t.Errorf("unexpected payload: %+v", event.Payload)
	}

	manager.RemoveHub("ABC234")
}

func TestBroadcaster_PresenceChanged(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("ABC234")
	client := NewClient(hub, "identity-1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	online := &model.PlayerIdentity{
		ID:          "identity-2",
		DisplayName: "Alice",
		Connections: map[model.ConnectionID]struct{}{"conn-1": {}},
	}
	broadcaster.PresenceChanged("ABC234", online)

	msg := receiveEvent(t, client)
	if !strings.Contains(msg, "event: player_online") {
		t.Errorf("expected player_online event, got: %s", msg)
	}

	offline := &model.PlayerIdentity{
		ID:          "identity-2",
		DisplayName: "Alice",
		Connections: map[model.ConnectionID]struct{}{},
	}
	broadcaster.PresenceChanged("ABC234", offline)

	msg = receiveEvent(t, client)
	if !strings.Contains(msg, "event: player_offline") {
		t.Errorf("expected player_offline event, got: %s", msg)
	}

	manager.RemoveHub("ABC234")
}

func TestBroadcaster_NoHubIsNoOp(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	// Nobody is listening to this room; publishing must not panic or
	// create a hub.
	broadcaster.CreditPaid("EMPTY1", 0, 1000, 0)

	if hub := manager.GetHub("EMPTY1"); hub != nil {
		t.Error("publishing to a silent room should not create a hub")
	}
}

func TestBroadcaster_PlayerJoined(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("ABC234")
	client := NewClient(hub, "identity-1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	joined := &model.PlayerIdentity{ID: "identity-2", DisplayName: "Bob"}
	broadcaster.PlayerJoined("ABC234", joined, 1)

	msg := receiveEvent(t, client)
	if !strings.Contains(msg, "event: player_joined") {
		t.Errorf("expected player_joined event, got: %s", msg)
	}
	if !strings.Contains(msg, `"player_index":1`) {
		t.Errorf("expected player_index in payload, got: %s", msg)
	}

	manager.RemoveHub("ABC234")
}
