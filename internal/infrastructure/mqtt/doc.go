// Package mqtt provides MQTT client connectivity for Motion Bridge.
//
// This package manages:
//   - Connection to the broker with explicit lifecycle control
//   - Message publishing with QoS guarantees
//   - Per-camera topic subscriptions
//   - Topic building and parsing for the bridge's channel layout
//
// # Architecture
//
// MQTT is the bus between the surveillance platform's event emitters and the
// preview consumers (dashboards, chat integrations):
//
//	ZoneMinder filters → MQTT Broker → Motion Bridge → MQTT Broker → Consumers
//
// Unlike a typical long-lived service client, this package does not enable
// the paho library's auto-reconnect. The bridge's connection manager owns the
// Disconnected → Connecting → Connected → Subscribed state machine and
// re-invokes Connect on its own fixed interval, so the library reporting
// connection loss once (via the OnDisconnect callback) is all that is needed.
//
// # Usage
//
//	client := mqtt.New(cfg)
//	client.SetOnConnect(func() { /* subscribe cameras */ })
//	client.SetOnDisconnect(func(err error) { /* schedule reconnect */ })
//	if err := client.Connect(); err != nil {
//	    log.Error("connect failed", "error", err)
//	}
//	defer client.Close()
package mqtt
