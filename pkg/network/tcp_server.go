package network

import (
	"context"
	"io"
	"log"
	"net"

	"biomassopt/pkg/common"
	"biomassopt/pkg/model"
	"biomassopt/pkg/monitor"
	"biomassopt/pkg/protocol"
	"biomassopt/pkg/store"
)

// TCPServer serves the calculation operations over the binary
// protocol. Semantics mirror the HTTP surface: one record is appended
// per successful calc, failures are reported as error frames and never
// crash the serving loop.
type TCPServer struct {
	store        *store.ResultStore
	model        model.Interpolator
	stats        *monitor.WorkloadStats
	historyLimit int
}

func NewTCPServer(st *store.ResultStore, m model.Interpolator, stats *monitor.WorkloadStats, historyLimit int) *TCPServer {
	if stats == nil {
		stats = monitor.NewWorkloadStats()
	}
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &TCPServer{store: st, model: m, stats: stats, historyLimit: historyLimit}
}

func (s *TCPServer) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()
	log.Printf("[TCP] Listening on %s (Binary Protocol)", addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("[TCP] Accept error: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Serve runs the accept loop on an existing listener. Start wraps it;
// tests use it directly with a loopback listener.
func (s *TCPServer) Serve(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *TCPServer) handleConn(conn net.Conn) {
	defer conn.Close()
	ctx := context.Background()

	for {
		req, err := protocol.Decode(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("[TCP] Decode error: %v", err)
			}
			return
		}

		switch req.Op {
		case protocol.OpCalc:
			s.handleCalc(ctx, conn, req.Payload)

		case protocol.OpLatest:
			rec, ok, err := s.store.Latest(ctx)
			if err != nil {
				protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
				continue
			}
			if !ok {
				protocol.Encode(conn, protocol.RespOK, nil)
				continue
			}
			payload, err := protocol.EncodeRecord(rec)
			if err != nil {
				protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
				continue
			}
			protocol.Encode(conn, protocol.RespVal, payload)

		case protocol.OpHistory:
			limit, err := protocol.DecodeLimit(req.Payload)
			if err != nil {
				protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
				continue
			}
			n := int(limit)
			if n <= 0 || n > s.historyLimit {
				n = s.historyLimit
			}
			records, err := s.store.History(ctx, n)
			if err != nil {
				protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
				continue
			}
			payload, err := protocol.EncodeRecords(records)
			if err != nil {
				protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
				continue
			}
			protocol.Encode(conn, protocol.RespVal, payload)

		case protocol.OpClear:
			if err := s.store.Clear(ctx); err != nil {
				protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
				continue
			}
			protocol.Encode(conn, protocol.RespOK, nil)

		default:
			protocol.Encode(conn, protocol.RespErr, []byte("unknown op"))
		}
	}
}

func (s *TCPServer) handleCalc(ctx context.Context, conn net.Conn, payload []byte) {
	inputs, err := protocol.DecodeInputs(payload)
	if err != nil {
		protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
		return
	}

	s.stats.RecordCalc()
	output, err := s.model.Predict(inputs.Values())
	if err != nil {
		s.stats.RecordCalcError()
		protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
		return
	}
	output = common.Round2(output)

	rec, err := s.store.Append(ctx, inputs, output)
	if err != nil {
		s.stats.RecordCalcError()
		log.Printf("[TCP] Store append failed: %v", err)
		protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
		return
	}

	resp, err := protocol.EncodeRecord(rec)
	if err != nil {
		protocol.Encode(conn, protocol.RespErr, []byte(err.Error()))
		return
	}
	protocol.Encode(conn, protocol.RespVal, resp)
}
