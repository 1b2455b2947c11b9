// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"kinetic/internal/kinetic"
	applog "kinetic/internal/log"
)

// Publisher samples engine telemetry on a fixed interval and streams
// it as binary state packets. It runs its own goroutine between Start
// and Stop.
//
// Packet layout, BigEndian:
//
//	offset  size  field
//	0       4     sequence            uint32
//	4       8     timestamp ms        int64
//	12      4     bass                float32
//	16      4     mid                 float32
//	20      4     high                float32
//	24      4     energy              float32
//	28      4     predicted energy    float32
//	32      4     beat position       float32
//	36      4     transition progress float32
//	40      4     target bpm          float32
//	44      4     detected bpm        float32
//	48      4     bpm confidence      float32
//	52      4     bar                 uint32
//	56      1     phrase              uint8
//	57      1     mode                uint8
//	58      1     transition style    uint8
//	59      1     flags               uint8
//	60      1+n   node                uint8 length prefix
//	...     1+m   frame id            uint8 length prefix
//
// Flag bits: 0 locked, 1 auto bpm, 2 upcoming beat, 3 peak.
type Publisher struct {
	sender   *Sender
	source   func() kinetic.Telemetry
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	seq    uint32
	packet bytes.Buffer
}

// Transition style codes on the wire.
const (
	wireStyleCut uint8 = iota
	wireStyleSlide
	wireStyleMorph
	wireStyleSmooth
	wireStyleZoomIn
	wireStyleUnknown uint8 = 255
)

func styleCode(s kinetic.TransitionStyle) uint8 {
	switch s {
	case kinetic.StyleCut:
		return wireStyleCut
	case kinetic.StyleSlide:
		return wireStyleSlide
	case kinetic.StyleMorph:
		return wireStyleMorph
	case kinetic.StyleSmooth:
		return wireStyleSmooth
	case kinetic.StyleZoomIn:
		return wireStyleZoomIn
	default:
		return wireStyleUnknown
	}
}

func flagBits(t kinetic.Telemetry) uint8 {
	var f uint8
	if t.Locked {
		f |= 1 << 0
	}
	if t.AutoBPM {
		f |= 1 << 1
	}
	if t.UpcomingBeat {
		f |= 1 << 2
	}
	if t.Peak {
		f |= 1 << 3
	}
	return f
}

// NewPublisher wires a telemetry source to a sender. An interval <= 0
// defaults to 16ms, roughly one packet per 60Hz tick.
func NewPublisher(interval time.Duration, sender *Sender, source func() kinetic.Telemetry) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp publisher: sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("udp publisher: telemetry source cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("udp publisher: invalid interval, defaulting to %s", interval)
	}

	return &Publisher{
		sender:   sender,
		source:   source,
		interval: interval,
	}, nil
}

// Start launches the publishing goroutine. Calling Start on a running
// publisher is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("udp publisher: already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.done = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	done := p.done
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("udp publisher: started, interval %s", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-done:
				return
			}
		}
	}()
}

// Stop signals the goroutine and waits for it to exit. Safe to call
// twice or before Start.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.done)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Close implements io.Closer by stopping the publisher.
func (p *Publisher) Close() error { return p.Stop() }

func (p *Publisher) publish() {
	t := p.source()
	p.seq++

	if err := p.buildPacket(t); err != nil {
		applog.Errorf("udp publisher: pack failed: %v", err)
		return
	}
	if err := p.sender.Send(p.packet.Bytes()); err != nil {
		applog.Errorf("udp publisher: %v", err)
	}
}

func (p *Publisher) buildPacket(t kinetic.Telemetry) error {
	p.packet.Reset()

	var err error
	put := func(v any) {
		if err == nil {
			err = binary.Write(&p.packet, binary.BigEndian, v)
		}
	}

	put(p.seq)
	put(t.Timestamp)
	put(float32(t.Bass))
	put(float32(t.Mid))
	put(float32(t.High))
	put(float32(t.Energy))
	put(float32(t.PredictedEnergy))
	put(float32(t.BeatPos))
	put(float32(t.TransitionProgress))
	put(float32(t.TargetBPM))
	put(float32(t.DetectedBPM))
	put(float32(t.BPMConfidence))
	put(uint32(t.Bar))
	put(uint8(t.Phrase))
	put(uint8(t.Mode))
	put(styleCode(t.TransitionStyle))
	put(flagBits(t))
	if err != nil {
		return err
	}

	packString(&p.packet, string(t.Node))
	packString(&p.packet, t.FrameID)
	return nil
}

// packString writes a length-prefixed string, truncated to 255 bytes.
func packString(buf *bytes.Buffer, s string) {
	if len(s) > 255 {
		s = s[:255]
	}
	buf.WriteByte(uint8(len(s)))
	buf.WriteString(s)
}
