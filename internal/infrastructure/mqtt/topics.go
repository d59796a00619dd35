package mqtt

import "strings"

// Motion Bridge topic layout, relative to the configured base prefixes:
//
//	<events-base>/<camera-id>   inbound, payload: event identifier
//	<gifs-base>/<camera-id>     outbound, payload: artifact filename
//
// Base prefixes come from configuration (mqtt_base_events_topic,
// mqtt_base_gifs_topic) so multiple bridge instances can share one broker.

// EventTopic returns the inbound motion-event topic for a camera.
//
// Example: EventTopic("zoneminder/events", "cam1") = "zoneminder/events/cam1"
func EventTopic(base, cameraID string) string {
	return base + "/" + cameraID
}

// PreviewTopic returns the outbound preview-reference topic for a camera.
//
// Example: PreviewTopic("zoneminder/gifs", "cam1") = "zoneminder/gifs/cam1"
func PreviewTopic(base, cameraID string) string {
	return base + "/" + cameraID
}

// CameraFromEventTopic derives the camera identifier from an inbound event
// topic by stripping the events base prefix.
//
// The second return value is false when the topic does not live under the
// base prefix or the remaining suffix is empty or nested.
//
// Example: CameraFromEventTopic("zoneminder/events", "zoneminder/events/cam1") = ("cam1", true)
func CameraFromEventTopic(base, topic string) (string, bool) {
	suffix, ok := strings.CutPrefix(topic, base+"/")
	if !ok || suffix == "" {
		return "", false
	}
	// A nested suffix means the topic belongs to some deeper hierarchy,
	// not a camera event channel.
	if strings.Contains(suffix, "/") {
		return "", false
	}
	return suffix, true
}
