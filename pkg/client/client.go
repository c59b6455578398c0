package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"biomassopt/pkg/common"
	"biomassopt/pkg/protocol"
)

// Client is a Go client for the binary TCP surface. A failed exchange
// triggers one reconnect-and-retry before the error is returned.
type Client struct {
	conn net.Conn
	addr string
}

func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		addr: addr,
	}, nil
}

// Calc evaluates the model at inputs and returns the stored record.
func (c *Client) Calc(inputs common.InputVector) (common.CalcRecord, error) {
	resp, err := c.roundTrip(protocol.OpCalc, protocol.EncodeInputs(inputs))
	if err != nil {
		return common.CalcRecord{}, err
	}
	if resp.Op != protocol.RespVal {
		return common.CalcRecord{}, respError(resp)
	}
	return protocol.DecodeRecord(resp.Payload)
}

// Latest returns the newest record; the bool is false when the store
// is empty.
func (c *Client) Latest() (common.CalcRecord, bool, error) {
	resp, err := c.roundTrip(protocol.OpLatest, nil)
	if err != nil {
		return common.CalcRecord{}, false, err
	}
	switch resp.Op {
	case protocol.RespVal:
		rec, err := protocol.DecodeRecord(resp.Payload)
		return rec, err == nil, err
	case protocol.RespOK:
		return common.CalcRecord{}, false, nil
	default:
		return common.CalcRecord{}, false, respError(resp)
	}
}

// History returns up to limit records, newest first. limit 0 asks for
// the server default.
func (c *Client) History(limit uint32) ([]common.CalcRecord, error) {
	resp, err := c.roundTrip(protocol.OpHistory, protocol.EncodeLimit(limit))
	if err != nil {
		return nil, err
	}
	if resp.Op != protocol.RespVal {
		return nil, respError(resp)
	}
	return protocol.DecodeRecords(resp.Payload)
}

// Clear removes every stored record.
func (c *Client) Clear() error {
	resp, err := c.roundTrip(protocol.OpClear, nil)
	if err != nil {
		return err
	}
	if resp.Op != protocol.RespOK {
		return respError(resp)
	}
	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) roundTrip(op byte, payload []byte) (*protocol.Packet, error) {
	if err := protocol.Encode(c.conn, op, payload); err != nil {
		return c.reconnectAndRetry(op, payload)
	}
	resp, err := protocol.Decode(c.conn)
	if err != nil {
		return c.reconnectAndRetry(op, payload)
	}
	return resp, nil
}

func (c *Client) reconnectAndRetry(op byte, payload []byte) (*protocol.Packet, error) {
	c.conn.Close()
	conn, err := net.DialTimeout("tcp", c.addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	// Re-send
	if err := protocol.Encode(c.conn, op, payload); err != nil {
		return nil, err
	}
	// Re-read
	return protocol.Decode(c.conn)
}

func respError(resp *protocol.Packet) error {
	if resp.Op == protocol.RespErr && len(resp.Payload) > 0 {
		return errors.New(string(resp.Payload))
	}
	return fmt.Errorf("unexpected response op 0x%02X", resp.Op)
}
