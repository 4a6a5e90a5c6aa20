package ingest

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func validEvent() Event {
	return Event{
		Version: 1, Session: "s1", Seq: 4,
		TS:   time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		DF:   json.RawMessage(`{"columns":["DBT","RH"],"index":[0],"data":[[1,2]]}`),
		Meta: json.RawMessage(`{"city":"Turku"}`),
	}
}

func TestEvent_Validate(t *testing.T) {
	if err := validEvent().Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	for name, mut := range map[string]func(*Event){
		"version": func(e *Event) { e.Version = 2 },
		"session": func(e *Event) { e.Session = " " },
		"seq":     func(e *Event) { e.Seq = 0 },
		"ts":      func(e *Event) { e.TS = time.Time{} },
		"df":      func(e *Event) { e.DF = json.RawMessage("null") },
	} {
		ev := validEvent()
		mut(&ev)
		if err := ev.Validate(); !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("%s: err=%v want ErrInvalidEvent", name, err)
		}
	}
}

func TestEvent_Snapshot(t *testing.T) {
	s := validEvent().Snapshot()
	if s.Version != 4 || string(s.Meta) != `{"city":"Turku"}` || s.UpdatedAt.IsZero() {
		t.Fatalf("snapshot=%+v", s)
	}
}

func TestPublisher_KeysBySession(t *testing.T) {
	conf := mocks.NewTestConfig()
	conf.Producer.Return.Successes = true
	prod := mocks.NewSyncProducer(t, conf)
	prod.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
		k, _ := m.Key.Encode()
		if string(k) != "s1" || m.Topic != "trh-snapshots" {
			return errors.New("unexpected key or topic")
		}
		v, _ := m.Value.Encode()
		var ev Event
		if err := json.Unmarshal(v, &ev); err != nil || ev.Seq != 4 {
			return errors.New("bad payload")
		}
		return nil
	})

	p := NewPublisherWith(prod, "trh-snapshots")
	if _, _, err := p.Publish(validEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestPublisher_RejectsInvalid(t *testing.T) {
	prod := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	p := NewPublisherWith(prod, "t")
	ev := validEvent()
	ev.Session = ""
	if _, _, err := p.Publish(ev); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("err=%v", err)
	}
	_ = p.Close()
}
