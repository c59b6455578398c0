package protocol

import (
	"bytes"
	"io"
	"testing"
	"time"

	"biomassopt/pkg/common"
)

func TestEncodeDecodeFrame(t *testing.T) {
	buf := new(bytes.Buffer)
	payload := []byte("hello")

	if err := Encode(buf, OpCalc, payload); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	pkg, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if pkg.Op != OpCalc {
		t.Errorf("got op %v, want %v", pkg.Op, OpCalc)
	}
	if !bytes.Equal(pkg.Payload, payload) {
		t.Errorf("payload mismatch: got %q", string(pkg.Payload))
	}
}

func TestDecodeInvalidMagic(t *testing.T) {
	buf := bytes.NewReader([]byte{0x00, OpCalc, 0, 0, 0, 0, 0, 0})
	_, err := Decode(buf)
	if err == nil || err.Error() != "invalid magic number" {
		t.Errorf("expected invalid magic error, got %v", err)
	}
}

func TestEncodeDecodeEmptyPayload(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := Encode(buf, OpClear, nil); err != nil {
		t.Fatalf("Encode empty failed: %v", err)
	}
	pkg, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if pkg.Op != OpClear || len(pkg.Payload) != 0 {
		t.Errorf("unexpected result: %+v", pkg)
	}
}

func TestRoundtripAllOps(t *testing.T) {
	ops := []byte{OpCalc, OpLatest, OpHistory, OpClear, RespOK, RespVal, RespErr}
	for _, op := range ops {
		buf := new(bytes.Buffer)
		if err := Encode(buf, op, []byte{1, 2, 3}); err != nil {
			t.Errorf("Encode op %v failed: %v", op, err)
			continue
		}
		pkg, err := Decode(buf)
		if err != nil {
			t.Errorf("Decode op %v failed: %v", op, err)
			continue
		}
		if pkg.Op != op {
			t.Errorf("op %v: got %v", op, pkg.Op)
		}
	}
}

func TestDecodeIncompleteHeader(t *testing.T) {
	r := bytes.NewReader([]byte{MagicNumber, OpCalc}) // only 2 bytes
	_, err := Decode(r)
	if err != io.ErrUnexpectedEOF && err == nil {
		t.Errorf("expected error for incomplete header, got %v", err)
	}
}

func TestInputsRoundtrip(t *testing.T) {
	in := common.InputVector{FuelPrice: 2.5, CommodityCost: 9, EnergyPrice: 1.7, WeatherIndex: 57}
	got, err := DecodeInputs(EncodeInputs(in))
	if err != nil {
		t.Fatalf("DecodeInputs: %v", err)
	}
	if got != in {
		t.Errorf("got %+v, want %+v", got, in)
	}

	if _, err := DecodeInputs([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short inputs payload")
	}
}

func TestRecordRoundtrip(t *testing.T) {
	rec := common.CalcRecord{
		ID:        42,
		Timestamp: time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC).Format(time.RFC3339Nano),
		InputVector: common.InputVector{
			FuelPrice: 1, CommodityCost: 5, EnergyPrice: 1, WeatherIndex: 40,
		},
		CalculatedOutput: 42.37,
	}

	payload, err := EncodeRecord(rec)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	got, err := DecodeRecord(payload)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if got != rec {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}

func TestRecordsRoundtrip(t *testing.T) {
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	records := []common.CalcRecord{
		{ID: 3, Timestamp: ts, CalculatedOutput: 30.01},
		{ID: 2, Timestamp: ts, CalculatedOutput: 20.02},
		{ID: 1, Timestamp: ts, CalculatedOutput: 10.03},
	}

	payload, err := EncodeRecords(records)
	if err != nil {
		t.Fatalf("EncodeRecords: %v", err)
	}
	got, err := DecodeRecords(payload)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records", len(got))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestDecodeRecordsLengthMismatch(t *testing.T) {
	if _, err := DecodeRecords([]byte{0, 0}); err == nil {
		t.Error("expected error for short payload")
	}
	if _, err := DecodeRecords([]byte{0, 0, 0, 2, 1, 2, 3}); err == nil {
		t.Error("expected error for count/length mismatch")
	}
}

func TestEncodeRecordBadTimestamp(t *testing.T) {
	rec := common.CalcRecord{ID: 1, Timestamp: "not-a-time"}
	if _, err := EncodeRecord(rec); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestLimitRoundtrip(t *testing.T) {
	limit, err := DecodeLimit(EncodeLimit(100))
	if err != nil {
		t.Fatalf("DecodeLimit: %v", err)
	}
	if limit != 100 {
		t.Errorf("got %d, want 100", limit)
	}

	limit, err = DecodeLimit(nil)
	if err != nil || limit != 0 {
		t.Errorf("empty payload: got %d, %v", limit, err)
	}

	if _, err := DecodeLimit([]byte{1, 2}); err == nil {
		t.Error("expected error for malformed limit payload")
	}
}
