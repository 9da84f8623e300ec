package v2

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/fblazt/toolbox/internal/service"
	"github.com/fblazt/toolbox/internal/storage"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	pipeline := imageconv.NewPipeline(imageconv.NewConverter(), 0, nil)
	svc := service.NewToolboxService(storage.NewMemoryStore(), &http.Client{}, pipeline, imageconv.PolicyAllOrNothing, "/api/images", nil)

	srv := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(zap.NewNop())))
	Register(srv, NewGRPCServer(svc, nil))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDecodeJWT(t *testing.T) {
	conn := dial(t)
	ctx := context.Background()

	out := new(structpb.Struct)
	err := conn.Invoke(ctx, DecodeJWTMethod, wrapperspb.String("eyJhbGciOiJub25lIn0.eyJzdWIiOiJ0b29sYm94In0.sig"), out)
	require.NoError(t, err)
	assert.Equal(t, "toolbox", out.Fields["payload"].GetStructValue().Fields["sub"].GetStringValue())
	assert.Equal(t, "sig", out.Fields["signature"].GetStringValue())
	assert.True(t, out.Fields["valid"].GetBoolValue())

	err = conn.Invoke(ctx, DecodeJWTMethod, wrapperspb.String("only.two"), new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = conn.Invoke(ctx, DecodeJWTMethod, wrapperspb.String(""), new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRenderMarkdown(t *testing.T) {
	conn := dial(t)

	out := new(wrapperspb.StringValue)
	require.NoError(t, conn.Invoke(context.Background(), RenderMarkdownMethod, wrapperspb.String("~~gone~~"), out))
	assert.Contains(t, out.GetValue(), "<del>gone</del>")
}

func TestSearchTools(t *testing.T) {
	conn := dial(t)
	ctx := context.Background()

	out := new(structpb.ListValue)
	require.NoError(t, conn.Invoke(ctx, SearchToolsMethod, wrapperspb.String(""), out))
	assert.Len(t, out.GetValues(), 5)

	out = new(structpb.ListValue)
	require.NoError(t, conn.Invoke(ctx, SearchToolsMethod, wrapperspb.String("barcode"), out))
	require.Len(t, out.GetValues(), 1)
	group := out.GetValues()[0].GetStructValue()
	assert.Equal(t, "Encoding", group.Fields["category"].GetStringValue())

	err := conn.Invoke(ctx, SearchToolsMethod, wrapperspb.String("zzz-nothing"), new(structpb.ListValue))
	assert.Equal(t, codes.NotFound, status.Code(err))
}
