package dbus

import (
	"encoding/json"
	"fmt"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
	"github.com/cptspacemanspiff/led-scoreboard/internal/logo"
	"github.com/cptspacemanspiff/led-scoreboard/internal/storage"
)

const (
	busName   = "org.scoreboard.Display"
	objPath   = "/org/scoreboard/Display"
	ifaceName = "org.scoreboard.Display"
)

// MaxLineLength bounds a single command line accepted over the bus.
const MaxLineLength = 4096

const introspectXML = `
<node>
  <interface name="` + ifaceName + `">
    <method name="SendCommand">
      <arg direction="in" type="s" name="line"/>
    </method>
    <method name="GetBitmap">
      <arg direction="in" type="b" name="physical"/>
      <arg direction="out" type="i" name="width"/>
      <arg direction="out" type="i" name="height"/>
      <arg direction="out" type="ay" name="packed"/>
    </method>
    <method name="GetFrame">
      <arg direction="in" type="b" name="physical"/>
      <arg direction="out" type="i" name="width"/>
      <arg direction="out" type="i" name="height"/>
      <arg direction="out" type="ay" name="colors"/>
    </method>
    <method name="PutLogo">
      <arg direction="in" type="s" name="name"/>
      <arg direction="in" type="s" name="format"/>
      <arg direction="in" type="ay" name="payload"/>
    </method>
    <method name="DeleteLogo">
      <arg direction="in" type="s" name="name"/>
      <arg direction="out" type="b" name="deleted"/>
    </method>
    <method name="ListLogos">
      <arg direction="out" type="s" name="json"/>
    </method>
  </interface>
` + introspect.IntrospectDataString + `
</node>`

// FrameSource returns the most recently published board state.
type FrameSource interface {
	Frame(physical bool) *bitmap.Bitmap
	Colors(physical bool) *board.ColorFrame
}

// LogoStore persists logo payloads.
type LogoStore interface {
	PutLogo(l storage.Logo) error
	Logos() ([]storage.Logo, error)
	DeleteLogo(name string) (bool, error)
}

// LogoInfo is the JSON form of a stored logo returned by ListLogos.
type LogoInfo struct {
	Name      string `json:"name"`
	Format    string `json:"format"`
	UpdatedAt int64  `json:"updated_at"`
}

// Service exposes the scoreboard over D-Bus. Commands are only queued; the
// board itself is never touched from a bus handler.
type Service struct {
	queue  chan<- string
	frames FrameSource
	logos  LogoStore
	geom   board.Geometry
	now    func() time.Time
}

// NewService creates a new D-Bus service feeding queue. PIX logos must match
// the logical size of geom.
func NewService(queue chan<- string, frames FrameSource, logos LogoStore, geom board.Geometry) *Service {
	return &Service{queue: queue, frames: frames, logos: logos, geom: geom, now: time.Now}
}

// Connect opens the named bus, "session" or "system".
func Connect(bus string) (*godbus.Conn, error) {
	switch bus {
	case "system":
		conn, err := godbus.SystemBus()
		if err != nil {
			return nil, fmt.Errorf("connect system bus: %w", err)
		}
		return conn, nil
	case "", "session":
		conn, err := godbus.SessionBus()
		if err != nil {
			return nil, fmt.Errorf("connect session bus: %w", err)
		}
		return conn, nil
	}
	return nil, fmt.Errorf("unknown bus %q", bus)
}

// Export registers the service on the given bus.
func (s *Service) Export(bus string) (*godbus.Conn, error) {
	conn, err := Connect(bus)
	if err != nil {
		return nil, err
	}

	conn.Export(s, objPath, ifaceName)
	conn.Export(introspect.Introspectable(introspectXML), objPath, "org.freedesktop.DBus.Introspectable")

	reply, err := conn.RequestName(busName, godbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("request name: %w", err)
	}
	if reply != godbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("name %s already taken", busName)
	}

	return conn, nil
}

// SendCommand queues a command line. Nothing about its outcome is returned.
func (s *Service) SendCommand(line string) *godbus.Error {
	if len(line) > MaxLineLength {
		return godbus.MakeFailedError(fmt.Errorf("command longer than %d bytes", MaxLineLength))
	}
	select {
	case s.queue <- line:
		return nil
	default:
		return godbus.MakeFailedError(fmt.Errorf("command queue full"))
	}
}

// GetBitmap returns the packed logical or physical lamp bitmap.
func (s *Service) GetBitmap(physical bool) (int32, int32, []byte, *godbus.Error) {
	b := s.frames.Frame(physical)
	if b == nil {
		return 0, 0, nil, godbus.MakeFailedError(fmt.Errorf("no frame published yet"))
	}
	return int32(b.Width()), int32(b.Height()), bitmap.Pack(b), nil
}

// GetFrame returns the colour of every logical or physical lamp, one byte
// per lamp in row-major order.
func (s *Service) GetFrame(physical bool) (int32, int32, []byte, *godbus.Error) {
	f := s.frames.Colors(physical)
	if f == nil {
		return 0, 0, nil, godbus.MakeFailedError(fmt.Errorf("no frame published yet"))
	}
	return int32(f.Width), int32(f.Height), f.Bytes(), nil
}

// PutLogo validates and stores a logo payload.
func (s *Service) PutLogo(name, format string, payload []byte) *godbus.Error {
	if name == "" {
		return godbus.MakeFailedError(fmt.Errorf("logo name must not be empty"))
	}
	f, err := logo.ParseFormat(format)
	if err != nil {
		return godbus.MakeFailedError(err)
	}
	if f == logo.FormatPIX {
		if _, err := bitmap.UnmarshalPIX(payload, s.geom.Width(), s.geom.Height()); err != nil {
			return godbus.MakeFailedError(err)
		}
	}
	l := storage.Logo{Name: name, Format: f, Payload: payload, UpdatedAt: s.now().Unix()}
	if err := s.logos.PutLogo(l); err != nil {
		return godbus.MakeFailedError(err)
	}
	return nil
}

// DeleteLogo removes a stored logo and reports whether it existed.
func (s *Service) DeleteLogo(name string) (bool, *godbus.Error) {
	deleted, err := s.logos.DeleteLogo(name)
	if err != nil {
		return false, godbus.MakeFailedError(err)
	}
	return deleted, nil
}

// ListLogos returns the stored logos as JSON.
func (s *Service) ListLogos() (string, *godbus.Error) {
	logos, err := s.logos.Logos()
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	infos := make([]LogoInfo, 0, len(logos))
	for _, l := range logos {
		infos = append(infos, LogoInfo{Name: l.Name, Format: string(l.Format), UpdatedAt: l.UpdatedAt})
	}
	data, err := json.Marshal(infos)
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	return string(data), nil
}
