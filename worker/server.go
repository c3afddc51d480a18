// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"
	"errors"
	"net"

	"github.com/luxfi/log"
	"go.uber.org/zap"

	"github.com/luxfi/dolphin/wire"
)

// Transaction is a raw client transaction payload together with the
// address it arrived from (spec.md §6: transaction_output).
type Transaction struct {
	PeerAddr net.Addr
	Payload  []byte
}

// Server is the worker ingress listener: it accepts framed TCP
// connections, classifies each with a banner handshake, and dispatches to
// the worker-control or transaction handler (spec.md §4.4, state machine).
type Server struct {
	log     log.Logger
	metrics *Metrics

	// WorkerOutput receives Query commands and any other non-Synchronize
	// worker message (spec.md §6: worker_message_output).
	WorkerOutput chan<- wire.WorkerMessageCommand
	// SynchronizeOutput receives Synchronize commands (spec.md §6:
	// synchronize_message_output).
	SynchronizeOutput chan<- wire.WorkerMessageCommand
	// TransactionOutput receives raw transactions (spec.md §6:
	// transaction_output).
	TransactionOutput chan<- Transaction
}

// Config configures a Server's network binding.
type Config struct {
	// ListenAddr is the host:port the server binds, per spec.md §6.
	ListenAddr string
}

// NewServer builds a Server that forwards to the three given channels.
// Callers own the channels and their consuming side; this core never
// closes them.
func NewServer(
	workerOutput chan<- wire.WorkerMessageCommand,
	synchronizeOutput chan<- wire.WorkerMessageCommand,
	transactionOutput chan<- Transaction,
	opts ...Option,
) *Server {
	s := &Server{
		log:               log.NewNoOpLogger(),
		WorkerOutput:      workerOutput,
		SynchronizeOutput: synchronizeOutput,
		TransactionOutput: transactionOutput,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a Server at construction.
type Option func(*Server)

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics attaches Prometheus instrumentation. Defaults to no metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// ListenAndServe binds cfg.ListenAddr and serves until ctx is canceled or
// the listener fails. Bind failure is fatal and returned to the caller
// (spec.md §7); accept failures other than a closed listener are logged and
// the loop continues, since a single bad accept should not bring down the
// whole ingress server.
func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is canceled or Accept
// fails terminally (listener closed).
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		go s.handleConnection(ctx, conn)
	}
}

// handleConnection runs the per-connection state machine of spec.md §4.4:
// banner handshake, then dispatch into the worker or transaction handler.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	f := newFramer(conn)

	bannerData, err := f.readFrame()
	if err != nil {
		f.close()
		return
	}

	channelType, err := wire.UnmarshalChannelType(bannerData)
	if err != nil {
		s.log.Warn("cannot parse banner", zap.Error(err), zap.Stringer("peer", f.remoteAddr()))
		f.close()
		return
	}

	if err := f.writeFrame(wire.Ack); err != nil {
		s.log.Warn("failed to write banner ack", zap.Error(err), zap.Stringer("peer", f.remoteAddr()))
		f.close()
		return
	}

	switch channelType {
	case wire.ChannelWorker:
		s.log.Debug("handling worker channel", zap.Stringer("peer", f.remoteAddr()))
		s.handleWorkerChannel(ctx, f)
	case wire.ChannelTransaction:
		s.log.Debug("handling transaction channel", zap.Stringer("peer", f.remoteAddr()))
		s.handleTransactionChannel(ctx, f)
	default:
		s.log.Warn("unknown channel type", zap.Uint8("channelType", uint8(channelType)))
		f.close()
	}
}
