// Package notify emits publication events to Kafka for the downstream
// notification service. The core's obligation ends at the event payload:
// what gets announced, and to whom, is decided by the consumer.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/publish"
)

type EventProducer interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// NewProducer picks the Kafka client per config, the same way the output
// destination is selected elsewhere.
func NewProducer(cfg *models.Config) (EventProducer, error) {
	switch cfg.Kafka.ProducerType {
	case "", "sarama":
		return NewSaramaProducer(cfg)
	case "confluent":
		return NewConfluentProducer(cfg)
	default:
		return nil, fmt.Errorf("unsupported kafka producer type: %s", cfg.Kafka.ProducerType)
	}
}

// MenuPublishedEvent summarizes one publication run for announcement.
type MenuPublishedEvent struct {
	Timestamp      int64                     `json:"timestamp"`
	EventType      string                    `json:"eventType"`
	Date           string                    `json:"date"`
	PublishedCount int                       `json:"publishedCount"`
	RareCount      int                       `json:"rareCount"`
	Flavors        []publish.PublishedFlavor `json:"flavors"`
}

// EmitMenuPublished sends the run summary to <prefix>_menu_published.
func EmitMenuPublished(p EventProducer, topicPrefix string, result *publish.Result, rareMax int, now time.Time) error {
	event := MenuPublishedEvent{
		Timestamp:      now.Unix(),
		EventType:      "menu_published",
		Date:           result.Date.Format(time.DateOnly),
		PublishedCount: len(result.Published),
		RareCount:      result.RareCount(rareMax),
		Flavors:        result.Published,
	}
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.WriteMessage(topicPrefix+"_menu_published", msg)
}
