// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"

	applog "kinetic/internal/log"
)

// LogTransport writes every payload to the application log at debug
// level. Useful when no downstream consumer is attached yet.
type LogTransport struct{}

func NewLogTransport() *LogTransport { return &LogTransport{} }

// Send logs the payload as JSON. It never fails; payloads that cannot
// marshal are logged by type only.
func (lt *LogTransport) Send(data any) error {
	if applog.GetLevel() > applog.LevelDebug {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		applog.Debugf("transport: payload (%T) %+v", data, data)
		return nil
	}
	applog.Debugf("transport: %s", raw)
	return nil
}

func (lt *LogTransport) Close() error { return nil }

var _ Transport = (*LogTransport)(nil)
