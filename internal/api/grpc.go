package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kenkohealth/kenko/internal/config"
	"github.com/kenkohealth/kenko/internal/utils"
)

const (
	// PredictorServiceName is the fully qualified gRPC service name.
	PredictorServiceName = "kenko.predictor.v1.Predictor"
	// PredictMethod is the full method path of the unary Predict call.
	PredictMethod = "/" + PredictorServiceName + "/Predict"
)

// PredictorServer is the gRPC surface of the predictor. Messages are
// well-known Struct/ListValue types, so no generated stubs are needed.
type PredictorServer interface {
	Predict(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
}

var predictorServiceDesc = grpc.ServiceDesc{
	ServiceName: PredictorServiceName,
	HandlerType: (*PredictorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kenko/predictor/v1/predictor.proto",
}

func predictHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictorServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PredictMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictorServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// predictorRPC adapts a Predictor to PredictorServer.
type predictorRPC struct {
	logger    *slog.Logger
	predictor Predictor
}

func (p *predictorRPC) Predict(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	req, err := FromStruct(in, incomingRequestID(ctx))
	if err != nil {
		p.logger.Debug("malformed predict request", slog.Any("error", err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	pred, err := p.predictor.Predict(ctx, req)
	if err != nil {
		return nil, status.Error(grpcCode(utils.KindOf(err)), utils.MessageOf(err))
	}
	return ToListValue(pred), nil
}

func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}

func grpcCode(kind utils.Kind) codes.Code {
	switch kind {
	case utils.KindInvalid:
		return codes.InvalidArgument
	case utils.KindUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// GRPCServer wraps the gRPC server implementation and lifecycle helpers.
type GRPCServer struct {
	cfg        config.ServerConfig
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
}

// NewGRPCServer constructs a gRPC server bound to the configured address.
func NewGRPCServer(cfg config.ServerConfig, logger *slog.Logger, predictor Predictor, opts ...grpc.ServerOption) (*GRPCServer, error) {
	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddress, err)
	}
	return newGRPCServer(cfg, lis, logger, predictor, opts...), nil
}

func newGRPCServer(cfg config.ServerConfig, lis net.Listener, logger *slog.Logger, predictor Predictor, opts ...grpc.ServerOption) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}

	grpc_prometheus.EnableHandlingTimeHistogram()
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	}
	serverOpts = append(serverOpts, opts...)
	grpcServer := grpc.NewServer(serverOpts...)

	grpcServer.RegisterService(&predictorServiceDesc, &predictorRPC{logger: logger, predictor: predictor})
	grpc_prometheus.Register(grpcServer)

	// The bundle is built before any server exists, so the service is ready
	// as soon as it is registered.
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(PredictorServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	return &GRPCServer{
		cfg:        cfg,
		grpcServer: grpcServer,
		health:     healthSrv,
		listener:   lis,
	}
}

// Start serves incoming gRPC requests until Shutdown is invoked.
func (s *GRPCServer) Start() error {
	if s.grpcServer == nil || s.listener == nil {
		return fmt.Errorf("server not initialised")
	}
	return s.grpcServer.Serve(s.listener)
}

// Shutdown marks the server NOT_SERVING and stops gracefully, falling back to
// Stop when ctx expires.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	if s.grpcServer == nil {
		return
	}
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.grpcServer.Stop()
	case <-stopped:
	}
}

// Close releases the listener of a server that never started.
func (s *GRPCServer) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// Address exposes the bound listener address (useful for tests).
func (s *GRPCServer) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GracefulTimeout returns the configured graceful timeout duration.
func (s *GRPCServer) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}
