package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"biomassopt/pkg/common"
)

const (
	MagicNumber = 0x42

	OpCalc    = 0x01
	OpLatest  = 0x02
	OpHistory = 0x03
	OpClear   = 0x04

	RespOK  = 0x00
	RespVal = 0x01
	RespErr = 0xFF
)

// recordWireSize is id + unix-nano timestamp + four inputs + output,
// all 8 bytes big-endian.
const recordWireSize = 8 + 8 + common.Dims*8 + 8

const inputsWireSize = common.Dims * 8

// Packet is one framed message: a 1-byte op and an opaque payload.
type Packet struct {
	Op      byte
	Payload []byte
}

// Encode writes one frame: magic, op, 2 reserved bytes, big-endian
// payload length, payload.
func Encode(w io.Writer, op byte, payload []byte) error {
	header := make([]byte, 8)
	header[0] = MagicNumber
	header[1] = op
	binary.BigEndian.PutUint32(header[4:8], uint32(len(payload)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func Decode(r io.Reader) (*Packet, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if header[0] != MagicNumber {
		return nil, errors.New("invalid magic number")
	}

	op := header[1]
	pLen := binary.BigEndian.Uint32(header[4:8])

	payload := make([]byte, pLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	return &Packet{Op: op, Payload: payload}, nil
}

// EncodeInputs packs the four inputs in fixed column order.
func EncodeInputs(inputs common.InputVector) []byte {
	buf := make([]byte, inputsWireSize)
	for i, v := range inputs.Values() {
		binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func DecodeInputs(payload []byte) (common.InputVector, error) {
	if len(payload) != inputsWireSize {
		return common.InputVector{}, fmt.Errorf("inputs payload must be %d bytes, got %d", inputsWireSize, len(payload))
	}
	var vals [common.Dims]float64
	for i := range vals {
		vals[i] = math.Float64frombits(binary.BigEndian.Uint64(payload[i*8:]))
	}
	return common.VectorOf(vals), nil
}

// EncodeLimit packs a history limit; 0 means "server default".
func EncodeLimit(limit uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, limit)
	return buf
}

func DecodeLimit(payload []byte) (uint32, error) {
	if len(payload) == 0 {
		return 0, nil
	}
	if len(payload) != 4 {
		return 0, fmt.Errorf("limit payload must be 4 bytes, got %d", len(payload))
	}
	return binary.BigEndian.Uint32(payload), nil
}

func appendRecord(buf []byte, r common.CalcRecord) ([]byte, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("record %d has unparseable timestamp %q: %w", r.ID, r.Timestamp, err)
	}

	field := make([]byte, 8)
	put := func(bits uint64) {
		binary.BigEndian.PutUint64(field, bits)
		buf = append(buf, field...)
	}
	put(uint64(r.ID))
	put(uint64(ts.UnixNano()))
	for _, v := range r.Values() {
		put(math.Float64bits(v))
	}
	put(math.Float64bits(r.CalculatedOutput))
	return buf, nil
}

// EncodeRecord packs a single calculation record.
func EncodeRecord(r common.CalcRecord) ([]byte, error) {
	return appendRecord(make([]byte, 0, recordWireSize), r)
}

// EncodeRecords packs a record list: big-endian count then records.
func EncodeRecords(records []common.CalcRecord) ([]byte, error) {
	buf := make([]byte, 4, 4+len(records)*recordWireSize)
	binary.BigEndian.PutUint32(buf, uint32(len(records)))

	var err error
	for _, r := range records {
		buf, err = appendRecord(buf, r)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func decodeRecordAt(payload []byte) common.CalcRecord {
	u64 := func(off int) uint64 { return binary.BigEndian.Uint64(payload[off:]) }

	var vals [common.Dims]float64
	for i := range vals {
		vals[i] = math.Float64frombits(u64(16 + i*8))
	}
	return common.CalcRecord{
		ID:               int64(u64(0)),
		Timestamp:        time.Unix(0, int64(u64(8))).UTC().Format(time.RFC3339Nano),
		InputVector:      common.VectorOf(vals),
		CalculatedOutput: math.Float64frombits(u64(16 + common.Dims*8)),
	}
}

func DecodeRecord(payload []byte) (common.CalcRecord, error) {
	if len(payload) != recordWireSize {
		return common.CalcRecord{}, fmt.Errorf("record payload must be %d bytes, got %d", recordWireSize, len(payload))
	}
	return decodeRecordAt(payload), nil
}

func DecodeRecords(payload []byte) ([]common.CalcRecord, error) {
	if len(payload) < 4 {
		return nil, errors.New("record list payload too short")
	}
	count := binary.BigEndian.Uint32(payload)
	if len(payload) != 4+int(count)*recordWireSize {
		return nil, fmt.Errorf("record list payload length %d does not match count %d", len(payload), count)
	}

	records := make([]common.CalcRecord, count)
	for i := range records {
		records[i] = decodeRecordAt(payload[4+i*recordWireSize:])
	}
	return records, nil
}
