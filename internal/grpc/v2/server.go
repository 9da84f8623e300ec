// Package v2 отдаёт инструменты без состояния по gRPC.
// Сообщения построены на well-known типах protobuf, поэтому сгенерированный
// код не нужен: описание сервиса собрано вручную.
package v2

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fblazt/toolbox/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "toolbox.v2.Tools"

// Полные имена методов для conn.Invoke.
const (
	DecodeJWTMethod      = "/" + ServiceName + "/DecodeJWT"
	RenderMarkdownMethod = "/" + ServiceName + "/RenderMarkdown"
	SearchToolsMethod    = "/" + ServiceName + "/SearchTools"
)

// ToolsServer серверная часть toolbox.v2.Tools.
type ToolsServer interface {
	DecodeJWT(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	RenderMarkdown(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	SearchTools(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
}

type GRPCServer struct {
	Service *service.ToolboxService
	Logger  *zap.Logger
}

func NewGRPCServer(svc *service.ToolboxService, logger *zap.Logger) *GRPCServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCServer{Service: svc, Logger: logger}
}

// Register регистрирует сервис на gRPC-сервере.
func Register(s grpc.ServiceRegistrar, srv ToolsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func (s *GRPCServer) DecodeJWT(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if strings.TrimSpace(req.GetValue()) == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}
	decoded := s.Service.DecodeJWT(req.GetValue())
	if !decoded.Valid {
		return nil, status.Error(codes.InvalidArgument, decoded.Error)
	}
	out, err := toStruct(decoded)
	if err != nil {
		s.Logger.Error("Failed to convert token", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "convert token: %v", err)
	}
	return out, nil
}

func (s *GRPCServer) RenderMarkdown(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	html, err := s.Service.RenderMarkdown(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "render: %v", err)
	}
	return wrapperspb.String(html), nil
}

func (s *GRPCServer) SearchTools(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	groups := s.Service.SearchTools(req.GetValue())
	if len(groups) == 0 {
		return nil, status.Errorf(codes.NotFound, "no tools match %q", req.GetValue())
	}
	items := make([]any, 0, len(groups))
	for _, g := range groups {
		v, err := toPlain(g)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "convert groups: %v", err)
		}
		items = append(items, v)
	}
	out, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "convert groups: %v", err)
	}
	return out, nil
}

// toPlain переводит значение в map/slice/примитивы через его JSON-форму,
// чтобы имена полей совпадали с HTTP API.
func toPlain(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	plain, err := toPlain(v)
	if err != nil {
		return nil, err
	}
	m, ok := plain.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", plain)
	}
	return structpb.NewStruct(m)
}

// unary собирает описание унарного метода.
func unary[Req proto.Message](name string, newReq func() Req, call func(ToolsServer, context.Context, Req) (proto.Message, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ToolsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ToolsServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc описание сервиса toolbox.v2.Tools.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ToolsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("DecodeJWT", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s ToolsServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
				return s.DecodeJWT(ctx, in)
			}),
		unary("RenderMarkdown", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s ToolsServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
				return s.RenderMarkdown(ctx, in)
			}),
		unary("SearchTools", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s ToolsServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
				return s.SearchTools(ctx, in)
			}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "toolbox/v2/tools.proto",
}

// LoggingInterceptor пишет по строке zap на каждый вызов.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		logger.Info("gRPC Request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
		)
		return resp, err
	}
}
