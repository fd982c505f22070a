package video

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/echoflaresat/snowglobe/media"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// busPollInterval bounds how long the bus watcher waits before rechecking for a
// switch request or shutdown.
const busPollInterval = 50 * time.Millisecond

// player is one GStreamer pipeline decoding a single file.
type player struct {
	path     string
	pipeline *gst.Pipeline
	sink     *app.Sink
}

func capsString(width, height int) string {
	return fmt.Sprintf("video/x-raw,format=RGBA,width=%d,height=%d", width, height)
}

// newPlayer builds filesrc ! decodebin ! videoconvert ! videoscale ! capsfilter ! appsink.
// Every decoded sample is copied and passed to deliver.
func newPlayer(path string, width, height int, deliver func(*media.Frame)) (*player, error) {
	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return nil, fmt.Errorf("create filesrc: %w", err)
	}
	filesrc.SetProperty("location", path)

	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return nil, fmt.Errorf("create decodebin: %w", err)
	}
	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("create videoconvert: %w", err)
	}
	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("create videoscale: %w", err)
	}
	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("create capsfilter: %w", err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsString(width, height)))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("create appsink: %w", err)
	}
	appsink.SetProperty("sync", true)     // Play at the file's frame rate
	appsink.SetProperty("max-buffers", 1) // Keep only latest frame
	appsink.SetProperty("drop", true)     // Drop old frames

	pipeline.AddMany(filesrc, decodebin, converter, scaler, capsfilter, appsink.Element)

	if err := gst.ElementLinkMany(filesrc, decodebin); err != nil {
		return nil, fmt.Errorf("link source: %w", err)
	}
	if err := gst.ElementLinkMany(converter, scaler, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("link video chain: %w", err)
	}

	// decodebin exposes pads once it has typed the stream.
	decodebin.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
		sinkPad := converter.GetStaticPad("sink")
		if sinkPad == nil {
			slog.Error("video: videoconvert has no sink pad")
			return
		}
		if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
			// Audio pads and late video pads land here.
			slog.Debug("video: pad not linked", "pad", srcPad.GetName(), "ret", ret)
		}
	})

	frameSize := 4 * width * height
	appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			sample := sink.PullSample()
			if sample == nil {
				return gst.FlowOK
			}
			buffer := sample.GetBuffer()
			if buffer == nil {
				return gst.FlowOK
			}

			mapInfo := buffer.Map(gst.MapRead)
			data := mapInfo.Bytes()
			if len(data) < frameSize {
				buffer.Unmap()
				slog.Warn("video: short buffer", "bytes", len(data), "want", frameSize)
				return gst.FlowOK
			}
			frame := media.NewFrame(width, height)
			copy(frame.Pix, data[:frameSize])
			buffer.Unmap()

			deliver(frame)
			return gst.FlowOK
		},
	})

	return &player{path: path, pipeline: pipeline, sink: appsink}, nil
}

func (p *player) play() error {
	if err := p.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("start %s: %w", p.path, err)
	}
	return nil
}

func (p *player) stop() {
	if err := p.pipeline.SetState(gst.StateNull); err != nil {
		slog.Warn("video: failed to stop pipeline", "path", p.path, "error", err)
	}
}

type stopReason int

const (
	stopShutdown stopReason = iota
	stopEOS
	stopError
	stopSwitch
)

// watch polls the bus until the stream ends, fails, a new item is requested
// or ctx is cancelled. For stopSwitch the requested index is returned.
func (p *player) watch(ctx context.Context, switches <-chan int) (stopReason, int) {
	bus := p.pipeline.GetPipelineBus()
	for {
		select {
		case <-ctx.Done():
			return stopShutdown, 0
		case index := <-switches:
			return stopSwitch, index
		default:
		}

		msg := bus.TimedPop(busPollInterval)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			slog.Debug("video: end of stream", "path", p.path)
			return stopEOS, 0
		case gst.MessageError:
			gerr := msg.ParseError()
			slog.Error("video: pipeline error",
				"path", p.path,
				"error", gerr.Error(),
				"debug", gerr.DebugString(),
			)
			return stopError, 0
		}
	}
}
