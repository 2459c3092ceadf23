package dbus

import (
	"encoding/json"
	"fmt"

	godbus "github.com/godbus/dbus/v5"

	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
)

// Client calls a running scoreboard service.
type Client struct {
	conn *godbus.Conn
	obj  godbus.BusObject
}

// NewClient connects to the scoreboard service on the named bus.
func NewClient(bus string) (*Client, error) {
	conn, err := Connect(bus)
	if err != nil {
		return nil, err
	}
	obj := conn.Object(busName, objPath)
	return &Client{conn: conn, obj: obj}, nil
}

// Close closes the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SendCommand queues one command line on the display.
func (c *Client) SendCommand(line string) error {
	return c.obj.Call(ifaceName+".SendCommand", 0, line).Err
}

// GetFrame fetches the colour of every logical or physical lamp.
func (c *Client) GetFrame(physical bool) (*board.ColorFrame, error) {
	var (
		w, h   int32
		colors []byte
	)
	err := c.obj.Call(ifaceName+".GetFrame", 0, physical).Store(&w, &h, &colors)
	if err != nil {
		return nil, err
	}
	f, err := board.ColorFrameFromBytes(int(w), int(h), colors)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// PutLogo stores a logo payload under name.
func (c *Client) PutLogo(name, format string, payload []byte) error {
	return c.obj.Call(ifaceName+".PutLogo", 0, name, format, payload).Err
}

// DeleteLogo removes a stored logo and reports whether it existed.
func (c *Client) DeleteLogo(name string) (bool, error) {
	var deleted bool
	err := c.obj.Call(ifaceName+".DeleteLogo", 0, name).Store(&deleted)
	return deleted, err
}

// ListLogos returns the stored logos.
func (c *Client) ListLogos() ([]LogoInfo, error) {
	var jsonStr string
	err := c.obj.Call(ifaceName+".ListLogos", 0).Store(&jsonStr)
	if err != nil {
		return nil, err
	}
	var infos []LogoInfo
	if err := json.Unmarshal([]byte(jsonStr), &infos); err != nil {
		return nil, err
	}
	return infos, nil
}
