package daemon

import (
	"encoding/json"
	"testing"
)

func TestCommandOmitsEmptyFields(t *testing.T) {
	cmd := Command{Cmd: CmdStop}
	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	if _, ok := raw["locale"]; ok {
		t.Error("stop command should omit locale")
	}
	if _, ok := raw["events"]; ok {
		t.Error("stop command should omit events")
	}
	if raw["cmd"] != "stop" {
		t.Errorf("cmd = %v, want stop", raw["cmd"])
	}
}

func TestResponseError(t *testing.T) {
	j := `{"ok":false,"error":"Microphone permission denied"}`

	var resp Response
	if err := json.Unmarshal([]byte(j), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.OK {
		t.Error("ok = true, want false")
	}
	if resp.Error != "Microphone permission denied" {
		t.Errorf("error = %q, want %q", resp.Error, "Microphone permission denied")
	}
}

func TestEventSegment(t *testing.T) {
	j := `{"event":"segment","text":"Hello there","source":"microphone","sessionId":"sess-1","sequenceNumber":5}`

	var ev Event
	if err := json.Unmarshal([]byte(j), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if ev.Event != EventSegment {
		t.Errorf("event = %q, want %q", ev.Event, EventSegment)
	}
	if ev.SequenceNumber == nil || *ev.SequenceNumber != 5 {
		t.Errorf("sequenceNumber = %v, want 5", ev.SequenceNumber)
	}
	if ev.SessionID != "sess-1" {
		t.Errorf("sessionId = %q, want %q", ev.SessionID, "sess-1")
	}
}

func TestEventError(t *testing.T) {
	j := `{"event":"error","message":"Speech recognition failed","transient":true}`

	var ev Event
	if err := json.Unmarshal([]byte(j), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if ev.Message != "Speech recognition failed" {
		t.Errorf("message = %q", ev.Message)
	}
	if ev.Transient == nil || !*ev.Transient {
		t.Errorf("transient = %v, want true", ev.Transient)
	}
}

func TestEventStatusStopped(t *testing.T) {
	j := `{"event":"status","recording":false}`

	var ev Event
	if err := json.Unmarshal([]byte(j), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if ev.Recording == nil || *ev.Recording {
		t.Errorf("recording = %v, want false", ev.Recording)
	}
}

func TestEventPartial(t *testing.T) {
	j := `{"event":"partial","text":"what were the","source":"microphone","sessionId":"sess-1"}`

	var ev Event
	if err := json.Unmarshal([]byte(j), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if ev.Event != EventPartial {
		t.Errorf("event = %q, want %q", ev.Event, EventPartial)
	}
	if ev.Text != "what were the" {
		t.Errorf("text = %q", ev.Text)
	}
	if ev.SequenceNumber != nil {
		t.Errorf("sequenceNumber = %v, partials are unsequenced", *ev.SequenceNumber)
	}
	if ev.Recording != nil || ev.Transient != nil {
		t.Error("partial should leave status and error fields unset")
	}
}

func TestSubscribeCommandListsEvents(t *testing.T) {
	cmd := Command{Cmd: CmdSubscribe, Events: []string{EventPartial, EventSegment}}
	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if want := `{"cmd":"subscribe","events":["partial","segment"]}`; string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
