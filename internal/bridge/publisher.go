package bridge

import (
	"github.com/nerrad567/motionbridge/internal/infrastructure/mqtt"
)

// Publisher announces finished preview artifacts on the previews topic
// hierarchy. It satisfies pipeline.Publisher.
type Publisher struct {
	broker    Broker
	baseTopic string
}

// NewPublisher creates a Publisher rooted at the given previews base topic.
func NewPublisher(broker Broker, baseTopic string) *Publisher {
	return &Publisher{broker: broker, baseTopic: baseTopic}
}

// PublishPreview publishes the artifact filename for a camera's event.
// Consumers resolve the filename against the shared working directory.
func (p *Publisher) PublishPreview(cameraID, artifact string) error {
	topic := mqtt.PreviewTopic(p.baseTopic, cameraID)
	return p.broker.Publish(topic, []byte(artifact), p.broker.QoS(), false)
}
