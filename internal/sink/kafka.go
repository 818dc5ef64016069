package sink

import (
	"github.com/bytedance/sonic"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"

	"github.com/chefaraga123/footium-player-chat-backend/internal/match"
)

// Publisher receives each committed snapshot's classified events. Nil-safe
// no-op implementations let the connectors stay sink-agnostic.
type Publisher interface {
	PublishKeyEvents(matchID string, goals []match.Goal, cards []match.Card)
	Close()
}

const sourceName = "footium-live"

// Envelope is the wire format for downstream consumers of classified match
// events.
type Envelope struct {
	EventType string       `json:"event_type"`
	Source    string       `json:"source"`
	MatchID   string       `json:"match_id"`
	Goals     []match.Goal `json:"goals"`
	Cards     []match.Card `json:"cards"`
}

// KafkaPublisher produces classified-event envelopes to a single topic.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	log      *logrus.Logger
}

func NewKafkaPublisher(brokers, topic string, log *logrus.Logger) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"client.id":         sourceName,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	kp := &KafkaPublisher{producer: p, topic: topic, log: log}
	go kp.listenDelivery()
	return kp, nil
}

func (kp *KafkaPublisher) PublishKeyEvents(matchID string, goals []match.Goal, cards []match.Card) {
	if len(goals) == 0 && len(cards) == 0 {
		return
	}

	env := Envelope{
		EventType: "key_events",
		Source:    sourceName,
		MatchID:   matchID,
		Goals:     goals,
		Cards:     cards,
	}
	data, err := sonic.Marshal(env)
	if err != nil {
		kp.log.WithError(err).Error("marshal key-event envelope")
		return
	}

	msg := kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &kp.topic, Partition: kafka.PartitionAny},
		Value:          data,
	}
	if err := kp.producer.Produce(&msg, nil); err != nil {
		kp.log.WithError(err).Error("produce key-event envelope")
	}
}

func (kp *KafkaPublisher) Close() {
	kp.producer.Flush(5000)
	kp.producer.Close()
}

func (kp *KafkaPublisher) listenDelivery() {
	for e := range kp.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				kp.log.WithError(ev.TopicPartition.Error).Error("kafka delivery failed")
			}
		case kafka.Error:
			kp.log.WithField("code", ev.Code()).Error("kafka error: " + ev.Error())
		}
	}
}

// Discard is a Publisher that drops everything. Used when no brokers are
// configured.
type Discard struct{}

func (Discard) PublishKeyEvents(string, []match.Goal, []match.Card) {}
func (Discard) Close()                                              {}
