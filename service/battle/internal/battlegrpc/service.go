package battlegrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName e' il nome completo del servizio gRPC.
const ServiceName = "mtcg.battle.v1.BattleService"

// Nomi dei metodi esposti.
const (
	MethodJoinBattle       = "JoinBattle"
	MethodJoinRandomBattle = "JoinRandomBattle"
	MethodGetScore         = "GetScore"
	MethodGetScoreboard    = "GetScoreboard"
)

// BattleServiceServer e' l'interfaccia implementata dal server.
// I messaggi sono tipi well-known: l'identita' viaggia nelle metadata.
type BattleServiceServer interface {
	JoinBattle(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	JoinRandomBattle(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetScore(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetScoreboard(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type unaryCall func(BattleServiceServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)

// ServiceDesc descrive il servizio per grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BattleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodJoinBattle, Handler: unaryHandler(MethodJoinBattle, BattleServiceServer.JoinBattle)},
		{MethodName: MethodJoinRandomBattle, Handler: unaryHandler(MethodJoinRandomBattle, BattleServiceServer.JoinRandomBattle)},
		{MethodName: MethodGetScore, Handler: unaryHandler(MethodGetScore, BattleServiceServer.GetScore)},
		{MethodName: MethodGetScoreboard, Handler: unaryHandler(MethodGetScoreboard, BattleServiceServer.GetScoreboard)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

// RegisterBattleServiceServer registra srv sul server gRPC.
func RegisterBattleServiceServer(s grpc.ServiceRegistrar, srv BattleServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unaryHandler(name string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BattleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(BattleServiceServer), ctx, req.(*emptypb.Empty))
		})
	}
}

// Client e' il client gRPC del BattleService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) JoinBattle(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodJoinBattle, opts...)
}

func (c *Client) JoinRandomBattle(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodJoinRandomBattle, opts...)
}

func (c *Client) GetScore(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetScore, opts...)
}

func (c *Client) GetScoreboard(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetScoreboard, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
