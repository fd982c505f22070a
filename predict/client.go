package predict

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultAddr is where a local PREDICT server listens.
const DefaultAddr = "localhost:1210"

// DefaultTimeout bounds one request/response exchange.
const DefaultTimeout = 500 * time.Millisecond

// Client speaks the PREDICT UDP query protocol. It is not safe for concurrent use.
type Client struct {
	conn    *net.UDPConn
	timeout time.Duration
	buf     []byte
}

// Dial resolves addr. UDP has no handshake, so an absent server only shows up on the first query.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("predict: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("predict: dial %s: %w", addr, err)
	}
	return &Client{conn: conn, timeout: timeout, buf: make([]byte, 8192)}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) query(cmd string) (string, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}
	if _, err := c.conn.Write([]byte(cmd)); err != nil {
		return "", fmt.Errorf("predict: send %s: %w", cmd, err)
	}
	n, err := c.conn.Read(c.buf)
	if err != nil {
		return "", fmt.Errorf("predict: %s: %w", cmd, err)
	}
	return string(c.buf[:n]), nil
}

// List returns the names of the satellites the server tracks.
func (c *Client) List() ([]string, error) {
	resp, err := c.query("GET_LIST")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(resp, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Satellite queries the live state of one satellite.
func (c *Client) Satellite(name string) (Satellite, error) {
	resp, err := c.query("GET_SAT " + name)
	if err != nil {
		return Satellite{}, err
	}
	return parseSatellite(resp)
}

// Satellite is one GET_SAT answer. Longitude is converted to degrees east.
type Satellite struct {
	Name       string
	Lat, Lon   float64 // degrees
	Azimuth    float64 // degrees
	Elevation  float64 // degrees
	NextEvent  time.Time
	Footprint  float64 // km, diameter
	Range      float64 // km
	Altitude   float64 // km
	Velocity   float64 // km/s
	Orbit      int
	Visibility string
}

// parseSatellite reads the newline separated GET_SAT fields:
// name, west longitude, latitude, azimuth, elevation, next AOS/LOS (unix time),
// footprint, range, altitude, velocity, orbit number, visibility.
func parseSatellite(resp string) (Satellite, error) {
	fields := strings.Split(strings.TrimRight(resp, "\n"), "\n")
	if len(fields) < 11 {
		return Satellite{}, fmt.Errorf("predict: short GET_SAT response (%d fields)", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	nums := make([]float64, 10)
	for i := 1; i <= 10; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return Satellite{}, fmt.Errorf("predict: field %d of %q: %w", i, fields[0], err)
		}
		nums[i-1] = v
	}

	lon := -nums[0]
	if lon < -180 {
		lon += 360
	}

	sat := Satellite{
		Name:      fields[0],
		Lon:       lon,
		Lat:       nums[1],
		Azimuth:   nums[2],
		Elevation: nums[3],
		NextEvent: time.Unix(int64(nums[4]), 0).UTC(),
		Footprint: nums[5],
		Range:     nums[6],
		Altitude:  nums[7],
		Velocity:  nums[8],
		Orbit:     int(nums[9]),
	}
	if len(fields) > 11 {
		sat.Visibility = fields[11]
	}
	return sat, nil
}
