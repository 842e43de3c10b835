// Package watch provides configuration sources for pingwatch.
//
// A source implements pingwatch.Source: it delivers a live sequence of
// configuration snapshots, starting with the current one as soon as it is
// available. All sources speak the same YAML document format defined by the
// config package.
//
// Available sources:
//
//   - [StaticSource]: a fixed in-memory snapshot, for tests and one-shots
//   - [FileSource]: a local file, re-read when its content changes
//   - [HTTPSource]: a remote document fetched on an interval
//   - [WSSource]: a websocket stream pushing documents as they change
//   - [PushSource]: a local HTTP listener accepting POSTed documents
//
// Transport-level polling (FileSource, HTTPSource) is a source concern; the
// watcher itself stays purely push-based. A transient transport failure is
// logged and retried by the source; only an unrecoverable failure is
// delivered as a terminal event, since the core has no authority to
// reconnect a transport it does not own.
package watch

import (
	"github.com/pingwatch/pingwatch"
	"github.com/pingwatch/pingwatch/config"
)

// parseSnapshot decodes one configuration document into a snapshot.
func parseSnapshot(data []byte) (pingwatch.Snapshot, error) {
	doc, err := config.Parse(data)
	if err != nil {
		return nil, err
	}
	return config.BuildSnapshot(doc), nil
}
