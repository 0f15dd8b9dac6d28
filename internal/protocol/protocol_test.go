package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"move","payload":{"x":10,"y":20}}`))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Type != CmdMove {
		t.Fatalf("type = %q, want move", env.Type)
	}

	if _, err := DecodeEnvelope([]byte(`{"payload":{}}`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("missing type: err = %v, want ErrInvalidPayload", err)
	}
	if _, err := DecodeEnvelope([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed envelope")
	}
}

func TestDecodeMovePayloadRequiresBothCoordinates(t *testing.T) {
	var ok MovePayload
	if err := Decode(json.RawMessage(`{"x":0,"y":300}`), &ok); err != nil {
		t.Fatalf("valid move rejected: %v", err)
	}
	if *ok.X != 0 || *ok.Y != 300 {
		t.Fatalf("decoded move = (%v, %v)", *ok.X, *ok.Y)
	}

	var missing MovePayload
	if err := Decode(json.RawMessage(`{"x":5}`), &missing); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("missing y: err = %v, want ErrInvalidPayload", err)
	}
}

func TestDecodeAbilityPayload(t *testing.T) {
	var p AbilityPayload
	if err := Decode(json.RawMessage(`{"abilityType":"dash","target":{"x":1,"y":2}}`), &p); err != nil {
		t.Fatalf("valid ability rejected: %v", err)
	}
	if p.AbilityType != models.AbilityDash || p.Target == nil || p.Target.X != 1 {
		t.Fatalf("decoded ability = %+v", p)
	}

	var noTarget AbilityPayload
	if err := Decode(json.RawMessage(`{"abilityType":"shield"}`), &noTarget); err != nil {
		t.Fatalf("ability without target rejected: %v", err)
	}

	for _, raw := range []string{`{}`, `{"abilityType":"move"}`, `{"abilityType":"laser"}`, `{"abilityType":3}`} {
		var bad AbilityPayload
		if err := Decode(json.RawMessage(raw), &bad); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("Decode(%s) err = %v, want ErrInvalidPayload", raw, err)
		}
	}
}

func TestDecodeSubmitPayloads(t *testing.T) {
	var d SubmitDrawingPayload
	if err := Decode(json.RawMessage(`{"sprite":"data:image/png;base64,AA"}`), &d); err != nil {
		t.Fatalf("sprite-only drawing rejected: %v", err)
	}
	var empty SubmitDrawingPayload
	if err := Decode(nil, &empty); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("empty drawing: err = %v, want ErrInvalidPayload", err)
	}
	var negative SubmitDrawingPayload
	if err := Decode(json.RawMessage(`{"image":"x","energySpent":-1}`), &negative); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("negative energy: err = %v, want ErrInvalidPayload", err)
	}

	var f SubmitFighterPayload
	if err := Decode(json.RawMessage(`{}`), &f); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("missing config: err = %v, want ErrInvalidPayload", err)
	}
	raw := `{"config":{"name":"Blob","health":{"maxHp":120},"movement":{"speed":4},"abilities":[{"type":"melee","params":{"damage":12}}]}}`
	if err := Decode(json.RawMessage(raw), &f); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if f.Config.Health.MaxHP != 120 || f.Config.Abilities[0].Params.Float("damage", 0) != 12 {
		t.Fatalf("decoded config = %+v", f.Config)
	}
}

func TestDecodeEmptyAndRelayPayloads(t *testing.T) {
	var e EmptyPayload
	if err := Decode(json.RawMessage(`null`), &e); err != nil {
		t.Fatalf("null empty payload rejected: %v", err)
	}

	var r RelayData
	if err := Decode(json.RawMessage(`{"points":[[1,2],[3,4]]}`), &r); err != nil {
		t.Fatalf("relay rejected: %v", err)
	}
	m, ok := r.Data.(map[string]any)
	if !ok || m["points"] == nil {
		t.Fatalf("relay data = %#v", r.Data)
	}
}

func TestCodecs(t *testing.T) {
	payload := ErrorPayload{Code: "room_full", Message: "房间已满"}

	data, err := CodecByName("json").Encode(KindError, payload)
	if err != nil {
		t.Fatalf("json encode: %v", err)
	}
	var jf struct {
		Type    string       `json:"type"`
		Payload ErrorPayload `json:"payload"`
	}
	if err := json.Unmarshal(data, &jf); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if jf.Type != KindError || jf.Payload != payload {
		t.Fatalf("json frame = %+v", jf)
	}

	c := CodecByName("msgpack")
	if !c.Binary() || c.Name() != "msgpack" {
		t.Fatalf("msgpack codec = %s binary=%v", c.Name(), c.Binary())
	}
	data, err = c.Encode(KindError, payload)
	if err != nil {
		t.Fatalf("msgpack encode: %v", err)
	}
	var mf struct {
		Type    string       `msgpack:"type"`
		Payload ErrorPayload `msgpack:"payload"`
	}
	if err := msgpack.Unmarshal(data, &mf); err != nil {
		t.Fatalf("msgpack decode: %v", err)
	}
	if mf.Type != KindError || mf.Payload != payload {
		t.Fatalf("msgpack frame = %+v", mf)
	}

	if CodecByName("xml").Name() != "json" {
		t.Fatalf("unknown codec should fall back to json")
	}
}

func TestResetMatchKeepsIdentity(t *testing.T) {
	ps := NewPlayerState("p1", "alice")
	ps.Ready = true
	ps.Submitted = true
	ps.Name = "Blob"
	ps.HP = 3
	ps.Abilities = []AbilityState{{Type: models.AbilityMelee}}

	ps.ResetMatch()

	if ps.ID != "p1" || ps.DisplayName != "alice" {
		t.Fatalf("identity lost: %+v", ps)
	}
	if ps.Ready || ps.Submitted || ps.Name != "" || ps.Abilities != nil || ps.HP != ps.MaxHP {
		t.Fatalf("match fields not reset: %+v", ps)
	}
}
