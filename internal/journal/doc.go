// Package journal persists a durable record of every processed motion
// event in a local SQLite database.
//
// The journal is write-mostly: the pipeline appends one row per processed
// notification (successes and failures alike), and operators query it after
// the fact to answer "did the preview for event X ever get published, and
// if not, why". It is strictly an observer; journal failures never affect
// event processing.
package journal
