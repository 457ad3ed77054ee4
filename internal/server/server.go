package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Server struct {
	Addr    string
	Handler http.Handler
	Logger  *zerolog.Logger
}

func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to init server: %w", err)
	}
	s.Logger.Info().
		Str("address", s.Addr).
		Msg("started server")

	inst := &http.Server{
		Handler: s.Handler,
	}

	go func() {
		<-ctx.Done()
		s.Logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		inst.Shutdown(shutdownCtx)
	}()

	if err := inst.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
