package events

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

const auditTopic = "custody.audit"

var _ Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes audit events to the custody.audit topic.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(brokers string) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}

	// drain delivery reports so the producer queue does not fill up
	go func() {
		for e := range producer.Events() {
			if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				logrus.Errorf("audit event delivery failed: %v", m.TopicPartition.Error)
			}
		}
	}()

	return &KafkaPublisher{producer: producer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := auditTopic
	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.DocumentID),
		Value:          payload,
	}, nil)
}

func (p *KafkaPublisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
